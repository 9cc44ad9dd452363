package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sgazz/SuperMoment/internal/models"
	"github.com/sgazz/SuperMoment/internal/services"
)

type createEventRequest struct {
	Title           string              `json:"title" binding:"required"`
	Description     string              `json:"description"`
	Location        string              `json:"location"`
	Coordinates     *models.Coordinates `json:"coordinates"`
	Date            time.Time           `json:"date"`
	Status          models.EventStatus  `json:"status"`
	MaxParticipants *int                `json:"max_participants"`
}

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		var req createEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		event := &models.Event{
			Title:           req.Title,
			Description:     req.Description,
			Location:        req.Location,
			Coordinates:     req.Coordinates,
			Date:            req.Date,
			Status:          req.Status,
			MaxParticipants: req.MaxParticipants,
		}
		created, err := es.CreateEvent(c.Request.Context(), event, identity)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Event created successfully"))
	}
}

// ListEvents returns all events, or only the caller's own with ?mine=true.
func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		mine, err := strconv.ParseBool(c.DefaultQuery("mine", "false"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid mine parameter"))
			return
		}

		var events []*models.Event
		if mine {
			identity, ok := callerIdentity(c)
			if !ok {
				return
			}
			events, err = es.ListEventsByAdmin(c.Request.Context(), identity)
		} else {
			events, err = es.ListEvents(c.Request.Context())
		}
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ListResponse(events, len(events)))
	}
}

func ListJoinedEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		events, err := es.ListEventsForParticipant(c.Request.Context(), identity)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ListResponse(events, len(events)))
	}
}

func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		event, err := es.GetEvent(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		var patch models.EventPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := es.UpdateEvent(c.Request.Context(), id, &patch, identity)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Event updated successfully"))
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		if err := es.DeleteEvent(c.Request.Context(), id, identity); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Event deleted successfully"))
	}
}

func ListParticipants(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		participants, err := es.ListParticipants(c.Request.Context(), id, identity)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ListResponse(participants, len(participants)))
	}
}
