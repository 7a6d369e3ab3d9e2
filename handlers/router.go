package handlers

import (
	"net/http"

	"github.com/KBRRM/create-class/middleware"

	"github.com/gorilla/mux"
)

// NewRouter wires every route. Everything under /api except /api/auth
// requires a valid bearer token.
func NewRouter(auth *AuthHandler, categories *CategoryHandler, notifications *NotificationHandler, tokens middleware.TokenValidator, corsOrigin string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("create-class service is running"))
	}).Methods(http.MethodGet)

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	authRoutes.HandleFunc("/register", auth.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", auth.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware(tokens))

	api.HandleFunc("/user/me", auth.Me).Methods(http.MethodGet)

	api.HandleFunc("/category", categories.AddCategoryDetail).Methods(http.MethodPost)
	api.HandleFunc("/category", categories.GetAllCategoryDetails).Methods(http.MethodGet)
	api.HandleFunc("/category/{id}", categories.GetCategoryDetailByID).Methods(http.MethodGet)
	api.HandleFunc("/category/{id}", categories.UpdateCategoryDetail).Methods(http.MethodPut)
	api.HandleFunc("/category/{id}", categories.DeleteCategoryDetail).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", notifications.CreateNotification).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{userId}", notifications.GetNotificationsForUser).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{notificationId}/{userId}", notifications.UpdateNotificationStatus).Methods(http.MethodPut)

	return middleware.EnableCORS(corsOrigin)(r)
}
