package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"tix/src/config"
	"tix/src/db"
	"tix/src/lib"
	"tix/src/models"
	"tix/src/orders"
	"tix/src/tickettypes"
	"tix/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func tickettypeHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/tickettypes", func(ctx *gin.Context) {
			var body types.CreateTicketTypeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error in validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			d := db.GetDb()
			tickettype := models.NewTicketType(body.Name, body.Price, body.Currency, body.Units, body.EventID)
			if body.SalesStart != nil {
				start, err := time.Parse(config.TIME_PARSE_FORMAT, *body.SalesStart)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				tickettype.SalesStart = &start
			}
			if body.SalesEnd != nil {
				end, err := time.Parse(config.TIME_PARSE_FORMAT, *body.SalesEnd)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				tickettype.SalesEnd = &end
			}
			err := d.Transaction(func(tx *gorm.DB) error {
				var event models.Event
				if err := tx.Where(&models.Event{ID: body.EventID}).First(&event).Error; err != nil {
					return models.ErrEventNotFound
				}
				if err := tx.Create(tickettype).Error; err != nil {
					return err
				}
				if body.Publish {
					return tickettype.Publish(tx)
				}
				return nil
			})
			if err != nil {
				ctx.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": tickettype})
		}).
		PUT("/tickettypes/:id/publish", func(ctx *gin.Context) {
			setPublished(ctx, true)
		}).
		PUT("/tickettypes/:id/unpublish", func(ctx *gin.Context) {
			setPublished(ctx, false)
		}).
		GET("/tickettypes/:id/stats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			d := db.GetDb()
			tickettype, err := tickettypes.LookupTicketTypeByID(d, params.ID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ordered, err := tickettype.AmountOrdered(d)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			purchased, err := tickettype.AmountPurchased(d)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			availability := string(tickettype.Availability)
			if rd := lib.GetRedisClient(); rd != nil {
				cached, err := rd.Get(context.Background(), tickettypes.AvailabilityCacheKey(tickettype.ID)).Result()
				if err == nil && cached != "" {
					availability = cached
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"units":        tickettype.Units,
				"ordered":      ordered,
				"purchased":    purchased,
				"available":    int64(tickettype.Units) - ordered,
				"availability": availability,
			}})
		}).
		DELETE("/tickettypes/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			d := db.GetDb()
			err := d.Transaction(func(tx *gorm.DB) error {
				tickettype, err := tickettypes.LookupTicketTypeByID(tx, params.ID)
				if err != nil {
					return err
				}
				held, err := orders.HasOrdersForTicketType(tx, tickettype.ID)
				if err != nil {
					return err
				}
				if held {
					return models.ErrTicketTypeInUse
				}
				return tx.Delete(tickettype).Error
			})
			if err != nil {
				ctx.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

func setPublished(ctx *gin.Context, publish bool) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	d := db.GetDb()
	var tickettype *models.TicketType
	err := d.Transaction(func(tx *gorm.DB) error {
		var err error
		tickettype, err = tickettypes.LookupTicketTypeByID(tx, params.ID)
		if err != nil {
			return err
		}
		if publish {
			return tickettype.Publish(tx)
		}
		return tickettype.Unpublish(tx)
	})
	if err != nil {
		ctx.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": tickettype})
}
