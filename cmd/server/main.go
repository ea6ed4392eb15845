package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orderfood/api/internal/cart"
	"github.com/orderfood/api/internal/checkout"
	"github.com/orderfood/api/internal/config"
	"github.com/orderfood/api/internal/remote"
	"github.com/orderfood/api/internal/router"
	"github.com/orderfood/api/internal/voucher"
	"github.com/orderfood/api/internal/ws"
)

func main() {
	cfg := config.Load()

	orderBase := remote.NewClient(cfg.OrderServiceURL, nil)
	paymentBase := remote.NewClient(cfg.PaymentBridgeURL, nil)

	orders := remote.NewOrdersClient(orderBase)
	vouchers := remote.NewVouchersClient(orderBase)
	payments := remote.NewPaymentClient(paymentBase)

	hub := ws.NewHub()
	go hub.Run()

	sessions := cart.NewSessions()
	writer := cart.NewDeferredWriter()
	cartSvc := cart.NewService(orders, sessions, writer)
	eval := voucher.NewEvaluator(vouchers)
	orchestrator := checkout.NewOrchestrator(orders, payments, eval, cartSvc, hub)

	r := router.New(cfg, router.Deps{
		Orders:   orders,
		Cart:     cartSvc,
		Checkout: orchestrator,
		Eval:     eval,
		Hub:      hub,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (order service %s)", cfg.Port, cfg.OrderServiceURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	// Note edits still sitting in the debounce window must reach the order
	// service before the process exits.
	writer.Flush()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
