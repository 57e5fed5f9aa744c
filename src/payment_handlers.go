package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"tix/src/db"
	"tix/src/orders"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func stripeWebhookRoute(g *gin.Engine) {
	g.POST(apiPrefix+"/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			paymentKey := cs.Metadata["payment_key"]
			if paymentKey == "" {
				log.Printf("[Stripe] CheckoutSession %s carries no payment_key\n", cs.ID)
				break
			}
			order, err := orders.LookupOrderByPaymentKey(db.GetDb(), paymentKey)
			if err != nil {
				log.Printf("[Stripe] No order for payment key %s: %s\n", paymentKey, err.Error())
				break
			}
			if err := orders.FinishOrder(order.ID, true); err != nil {
				log.Printf("[Stripe] Error finalizing order %d: %s\n", order.ID, err.Error())
				ctx.Status(http.StatusUnprocessableEntity)
				return
			}
		case "checkout.session.expired":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			log.Printf("[Stripe] CheckoutSession %s expired\n", cs.ID)
		}
		ctx.Status(http.StatusOK)
	})
}
