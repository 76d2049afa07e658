package health

import (
	"net/http"

	"gorm.io/gorm"

	"pesanapp/internal/common"
)

// Handler answers /health by pinging the database
type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		common.WriteJSON(w, http.StatusInternalServerError, common.ErrorResponse{
			Error:   "DatabaseUnavailable",
			Details: err.Error(),
		})
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully connected to database",
	})
}
