package main

import (
	"errors"
	"log"
	"net/http"

	"tix/src/db"
	"tix/src/models"
	"tix/src/orders"
	"tix/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func orderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/orders", func(ctx *gin.Context) {
			var body types.StartOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error in validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order, err := orders.StartOrder(body.UserID, body.AccountID)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": order})
		}).
		PUT("/orders/:id/tickets", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.AddTicketsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error in validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order, err := orders.AddTickets(params.ID, body.TicketTypeID, *body.Amount)
			if err != nil {
				ctx.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		}).
		POST("/orders/:id/checkout", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error in validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			provider := body.Provider
			if provider == "" {
				provider = "stripe"
			}
			var user *models.User
			if body.UserID != nil {
				d := db.GetDb()
				var u models.User
				if err := d.Where(&models.User{ID: *body.UserID}).First(&u).Error; err != nil {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
					return
				}
				user = &u
			}
			url, err := orders.CheckoutOrder(params.ID, user, provider)
			if err != nil {
				ctx.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"checkout_url": url}})
		}).
		POST("/orders/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := orders.CancelOrder(params.ID); err != nil {
				ctx.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		DELETE("/orders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := orders.DeleteOrder(params.ID); err != nil {
				ctx.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/orders/key/:key", func(ctx *gin.Context) {
			var params types.OrderKeyRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			d := db.GetDb()
			order, err := orders.LookupOrderByKey(d, params.Key)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			var full models.Order
			err = d.
				Where(&models.Order{ID: order.ID}).
				Preload("User").
				Preload("TicketOrders.TicketType").
				First(&full).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			total, err := full.Total(d)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": full, "total": total})
		})
	return g
}

func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrTicketTypeNotFound),
		errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrOrderLocked),
		errors.Is(err, models.ErrAmountNotAvailable),
		errors.Is(err, models.ErrTicketTypeInUse),
		errors.Is(err, models.ErrSubscriptionLimit):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
