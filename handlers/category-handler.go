package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KBRRM/create-class/logging"
	"github.com/KBRRM/create-class/middleware"
	"github.com/KBRRM/create-class/models"
	"github.com/KBRRM/create-class/services"

	"github.com/gorilla/mux"
)

type CategoryHandler struct {
	service *services.CategoryService
}

func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// writeCategoryError maps service errors; anything unclassified is a 400.
func writeCategoryError(w http.ResponseWriter, err error) {
	var notFound services.NotFoundError
	var authErr services.AuthorizationError
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &authErr):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (h *CategoryHandler) AddCategoryDetail(w http.ResponseWriter, r *http.Request) {
	var input models.CategoryDetailInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	category, err := h.service.AddCategoryDetail(r.Context(), middleware.CallerID(r), input)
	if err != nil {
		logging.Logger.Warnf("Event ID: CATEGORY_CREATE_FAILED, Description: %v", err)
		writeCategoryError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: CATEGORY_CREATED, Description: Category %s created.", category.ID.Hex())
	writeJSON(w, http.StatusCreated, envelope{
		"status":  "success",
		"message": "Category detail added successfully",
		"data":    category,
	})
}

func (h *CategoryHandler) UpdateCategoryDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input models.CategoryDetailInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	category, err := h.service.UpdateCategoryDetail(r.Context(), middleware.CallerID(r), id, input)
	if err != nil {
		logging.Logger.Warnf("Event ID: CATEGORY_UPDATE_FAILED, Description: Category %s: %v", id, err)
		writeCategoryError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: CATEGORY_UPDATED, Description: Category %s updated.", id)
	writeJSON(w, http.StatusOK, envelope{
		"status":  "success",
		"message": "Category detail updated successfully",
		"data":    category,
	})
}

func (h *CategoryHandler) DeleteCategoryDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.DeleteCategoryDetail(r.Context(), middleware.CallerID(r), id); err != nil {
		logging.Logger.Warnf("Event ID: CATEGORY_DELETE_FAILED, Description: Category %s: %v", id, err)
		writeCategoryError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: CATEGORY_DELETED, Description: Category %s deleted.", id)
	writeJSON(w, http.StatusOK, envelope{
		"status":  "success",
		"message": "Category detail deleted successfully",
	})
}

func (h *CategoryHandler) GetCategoryDetailByID(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategoryDetailByID(r.Context(), middleware.CallerID(r), mux.Vars(r)["id"])
	if err != nil {
		writeCategoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "data": category})
}

func (h *CategoryHandler) GetAllCategoryDetails(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetAllCategoryDetails(r.Context(), middleware.CallerID(r))
	if err != nil {
		writeCategoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "data": categories})
}
