package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

type EmployersHandler struct {
	employerRepo repository.EmployerRepo
	userRepo     repository.UserRepo
}

func NewEmployersHandler(er repository.EmployerRepo, ur repository.UserRepo) *EmployersHandler {
	return &EmployersHandler{employerRepo: er, userRepo: ur}
}

type employerRequest struct {
	ContactName string `json:"contact_name" validate:"required"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
	District    string `json:"district" validate:"omitempty,oneof=香港島 九龍 新界 離島"`
}

func (h *EmployersHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	emp, err := h.employerRepo.GetEmployerByUserID(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, internal(err))
		return
	}
	if emp == nil {
		writeError(w, r, notFound("employer profile not found"))
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// UpdateMe saves the caller's employer profile, creating it when an account
// has none yet (OAuth sign-ups).
func (h *EmployersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req employerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.ContactName) == "" {
		writeError(w, r, &AppError{Status: http.StatusBadRequest, Code: CodeValidation, Message: "validation failed", Details: []string{"contact_name is required"}})
		return
	}

	ctx := r.Context()
	userID := UserIDFromContext(ctx)
	emp, err := h.employerRepo.GetEmployerByUserID(ctx, userID)
	if err != nil {
		writeError(w, r, internal(err))
		return
	}

	status := http.StatusOK
	if emp == nil {
		emp = &models.Employer{UserID: userID}
		status = http.StatusCreated
	}
	emp.ContactName = strings.TrimSpace(req.ContactName)
	emp.CompanyName = optional(req.CompanyName)
	emp.Phone = optional(req.Phone)
	emp.District = optional(req.District)

	if status == http.StatusCreated {
		id, err := h.employerRepo.CreateEmployer(ctx, emp)
		if err != nil {
			writeError(w, r, internal(err))
			return
		}
		emp.ID = id
		if err := h.userRepo.AddRole(ctx, userID, models.RoleEmployer); err != nil {
			writeError(w, r, internal(err))
			return
		}
	} else if err := h.employerRepo.UpdateEmployer(ctx, emp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, notFound("employer profile not found"))
			return
		}
		writeError(w, r, internal(err))
		return
	}
	writeJSON(w, status, emp)
}
