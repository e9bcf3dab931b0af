package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmacy-platform/stock-service/internal/application"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
	"github.com/pharmacy-platform/stock-service/pkg/middleware"
)

func createMedicineHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateMedicineCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondValidationError(err.Error())
			return
		}

		medicine, err := service.Create(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, medicine)
	}
}

func getMedicineHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		medicine, err := service.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, medicine)
	}
}

func getMedicineByCodeHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		medicine, err := service.GetByCode(c.Request.Context(), c.Param("code"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, medicine)
	}
}

func listMedicinesHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		medicines, err := service.List(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, medicines)
	}
}

func createInventoryHandler(service *application.InventoryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateInventoryCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondValidationError(err.Error())
			return
		}

		inventory, err := service.Create(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, inventory)
	}
}

func getInventoryHandler(service *application.InventoryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		inventory, err := service.Get(c.Request.Context(), c.Param("medicineId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, inventory)
	}
}

func listInventoryHandler(service *application.InventoryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		inventories, err := service.List(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, inventories)
	}
}

func adjustStockHandler(service *application.InventoryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Delta int `json:"delta" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondValidationError(err.Error())
			return
		}

		inventory, err := service.Adjust(c.Request.Context(), application.AdjustStockCommand{
			MedicineID: c.Param("medicineId"),
			Delta:      req.Delta,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, inventory)
	}
}

func createOrderHandler(service *application.OrderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateOrderCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondValidationError(err.Error())
			return
		}

		order, err := service.Create(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, order)
	}
}

func createOrderBatchHandler(service *application.OrderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmds []application.CreateOrderCommand
		if err := c.ShouldBindJSON(&cmds); err != nil {
			responder.RespondValidationError(err.Error())
			return
		}
		if len(cmds) == 0 {
			responder.RespondValidationError("at least one order is required")
			return
		}

		orders, err := service.CreateBatch(c.Request.Context(), cmds)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, orders)
	}
}

func getOrderHandler(service *application.OrderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		order, err := service.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func listOrdersHandler(service *application.OrderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orders, err := service.List(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func receiveOrderHandler(service *application.OrderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		order, err := service.Receive(c.Request.Context(), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func deliveryDatesHandler(service *application.OrderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		dates, err := service.DeliveryDates(c.Request.Context(), c.Param("medicineId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"deliveryDates": dates})
	}
}

func createPrescriptionHandler(service *application.PrescriptionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreatePrescriptionCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondValidationError(err.Error())
			return
		}

		prescription, err := service.Create(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, prescription)
	}
}

func getPrescriptionHandler(service *application.PrescriptionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		prescription, err := service.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, prescription)
	}
}

func listPrescriptionsHandler(service *application.PrescriptionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		activeOnly := c.Query("active") == "true"

		prescriptions, err := service.List(c.Request.Context(), activeOnly)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, prescriptions)
	}
}

func updatePrescriptionStatusHandler(service *application.PrescriptionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondValidationError(err.Error())
			return
		}

		prescription, err := service.UpdateStatus(c.Request.Context(), application.UpdatePrescriptionStatusCommand{
			ID:     c.Param("id"),
			Status: req.Status,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, prescription)
	}
}

func cancelPrescriptionHandler(service *application.PrescriptionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		prescription, err := service.Cancel(c.Request.Context(), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, prescription)
	}
}
