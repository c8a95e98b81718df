package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

// TasksHandler - the current user's task list
func (h *Handler) TasksHandler(w http.ResponseWriter, r *http.Request, conn store.Conn, user *models.User) {
	h.renderTasks(w, r, conn, user, http.StatusOK, false)
}

// AddTaskHandler - adds a task; empty text re-renders the list with 400
func (h *Handler) AddTaskHandler(w http.ResponseWriter, r *http.Request, conn store.Conn, user *models.User) {
	if err := r.ParseForm(); err != nil {
		h.renderTasks(w, r, conn, user, http.StatusBadRequest, true)
		return
	}

	task, err := conn.Tasks().Add(r.Context(), r.PostForm.Get("text"), user.ID)
	if errors.Is(err, store.ErrEmptyText) {
		h.renderTasks(w, r, conn, user, http.StatusBadRequest, true)
		return
	}
	if err != nil {
		h.serverError(w, "add task", err)
		return
	}

	log.Printf("Task %d added for %s", task.ID, user.Username)
	http.Redirect(w, r, "/tasks", http.StatusFound)
}

// DeleteTaskHandler - removes a task by id.
// Any logged in user can delete any id; a missing or malformed id is a no-op.
func (h *Handler) DeleteTaskHandler(w http.ResponseWriter, r *http.Request, conn store.Conn, user *models.User) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err == nil {
		if err := conn.Tasks().Delete(r.Context(), id); err != nil {
			h.serverError(w, "delete task", err)
			return
		}
	}

	http.Redirect(w, r, "/tasks", http.StatusFound)
}

func (h *Handler) renderTasks(w http.ResponseWriter, r *http.Request, conn store.Conn, user *models.User, status int, invalid bool) {
	tasks, err := conn.Tasks().ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, "list tasks", err)
		return
	}

	h.render(w, status, models.PageData{
		Title:       "Tasks",
		CurrentPage: "tasks",
		User:        user,
		Tasks:       tasks,
		Invalid:     invalid,
	})
}
