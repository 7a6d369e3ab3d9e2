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

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type createNotificationRequest struct {
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

func (nh *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r)
	logging.Logger.Infof("Event ID: NOTIFICATION_CREATE_START, Description: User %s is creating a notification.", callerID)

	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_CREATE_BAD_PAYLOAD, Description: Invalid request payload: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Recipients == nil {
		req.Recipients = []string{}
	}

	id, err := nh.service.CreateNotification(r.Context(), callerID, req.Type, req.Title, req.Message, req.Recipients)
	if err != nil {
		var authErr services.AuthorizationError
		if errors.As(err, &authErr) {
			logging.Logger.Warnf("Event ID: NOTIFICATION_CREATE_FORBIDDEN, Description: %v", err)
			writeJSON(w, http.StatusNotFound, envelope{"message": err.Error()})
			return
		}
		logging.Logger.Errorf("Event ID: NOTIFICATION_CREATE_FAILED, Description: Failed to create notification for user %s: %v", callerID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.Logger.Infof("Event ID: NOTIFICATION_CREATED, Description: Notification %s created for %d recipients.", id, len(req.Recipients))
	writeJSON(w, http.StatusCreated, envelope{
		"message":        "Notification created successfully",
		"notificationId": id,
		"recipients":     req.Recipients,
	})
}

func (nh *NotificationHandler) GetNotificationsForUser(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r)
	userID := mux.Vars(r)["userId"]
	logging.Logger.Debugf("Event ID: NOTIFICATION_LIST_START, Description: User %s requested notifications of %s.", callerID, userID)

	views, err := nh.service.GetNotificationsForUser(r.Context(), callerID, userID)
	if err != nil {
		var authErr services.AuthorizationError
		var notFound services.NotFoundError
		switch {
		case errors.As(err, &authErr):
			logging.Logger.Warnf("Event ID: NOTIFICATION_LIST_FORBIDDEN, Description: User %s may not read notifications of %s.", callerID, userID)
			writeJSON(w, http.StatusForbidden, envelope{"message": err.Error()})
		case errors.As(err, &notFound):
			writeJSON(w, http.StatusNotFound, envelope{"status": "error", "message": err.Error(), "data": []models.NotificationView{}})
		default:
			logging.Logger.Errorf("Event ID: NOTIFICATION_LIST_FAILED, Description: Failed to fetch notifications for %s: %v", userID, err)
			writeJSON(w, http.StatusInternalServerError, envelope{"status": "error", "message": err.Error(), "data": []models.NotificationView{}})
		}
		return
	}

	logging.Logger.Infof("Event ID: NOTIFICATION_LIST_SUCCESS, Description: Fetched %d notifications for user %s.", len(views), userID)
	writeJSON(w, http.StatusOK, envelope{"status": "success", "data": views})
}

func (nh *NotificationHandler) UpdateNotificationStatus(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r)
	vars := mux.Vars(r)
	notificationID, userID := vars["notificationId"], vars["userId"]

	var req struct {
		Status models.RecipientStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_STATUS_BAD_PAYLOAD, Description: Invalid request payload: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err := nh.service.UpdateNotificationStatus(r.Context(), callerID, notificationID, userID, req.Status)
	if err != nil {
		var authErr services.AuthorizationError
		var validationErr services.ValidationError
		switch {
		case errors.As(err, &authErr):
			logging.Logger.Warnf("Event ID: NOTIFICATION_STATUS_FORBIDDEN, Description: User %s may not update notifications of %s.", callerID, userID)
			writeJSON(w, http.StatusForbidden, envelope{"message": err.Error()})
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logging.Logger.Errorf("Event ID: NOTIFICATION_STATUS_FAILED, Description: Failed to update notification %s for %s: %v", notificationID, userID, err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logging.Logger.Infof("Event ID: NOTIFICATION_STATUS_UPDATED, Description: Notification %s set to %s for user %s.", notificationID, req.Status, userID)
	writeJSON(w, http.StatusOK, envelope{"message": "Notification status updated successfully"})
}
