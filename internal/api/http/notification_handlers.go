package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/identity"
	"github.com/quizdesk/quizdesk/internal/notify"
)

func MyNotificationsHandler(store *notify.Store, users identity.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct, ok := currentAccount(r, users)
		if !ok {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		list, err := store.ForUser(r.Context(), acct.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func MarkNotificationReadHandler(store *notify.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.MarkRead(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
