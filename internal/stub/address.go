package stub

import (
	"net/http"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func addressFromInput(street, city, state, postalCode, country string, isDefault bool) model.Address {
	return model.Address{
		ID:         uuid.NewString(),
		Street:     street,
		City:       city,
		State:      state,
		PostalCode: postalCode,
		Country:    country,
		IsDefault:  isDefault,
	}
}

type addressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (s *Server) listAddresses(c echo.Context) error {
	email := subjectFromContext(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	addresses := s.addresses[email]
	if addresses == nil {
		addresses = []model.Address{}
	}
	return c.JSON(http.StatusOK, addresses)
}

func (s *Server) createAddress(c echo.Context) error {
	email := subjectFromContext(c)

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Street == "" || req.City == "" {
		return detailJSON(c, http.StatusBadRequest, "street and city are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	//最初の1件だけデフォルトにする（デフォルトは高々1つ）
	isDefault := len(s.addresses[email]) == 0
	addr := addressFromInput(req.Street, req.City, req.State, req.PostalCode, req.Country, isDefault)
	s.addresses[email] = append(s.addresses[email], addr)

	return c.JSON(http.StatusCreated, addr)
}

func (s *Server) updateAddress(c echo.Context) error {
	email := subjectFromContext(c)
	id := c.Param("id")

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.addresses[email] {
		if a.ID == id {
			a.Street = req.Street
			a.City = req.City
			a.State = req.State
			a.PostalCode = req.PostalCode
			a.Country = req.Country
			s.addresses[email][i] = a
			return c.JSON(http.StatusOK, a)
		}
	}
	return detailJSON(c, http.StatusNotFound, "not found")
}

func (s *Server) deleteAddress(c echo.Context) error {
	email := subjectFromContext(c)
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	addresses := s.addresses[email]
	for i, a := range addresses {
		if a.ID == id {
			s.addresses[email] = append(addresses[:i], addresses[i+1:]...)
			//デフォルトを消したら先頭を繰り上げる
			if a.IsDefault && len(s.addresses[email]) > 0 {
				s.addresses[email][0].IsDefault = true
			}
			return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
		}
	}
	return detailJSON(c, http.StatusNotFound, "not found")
}
