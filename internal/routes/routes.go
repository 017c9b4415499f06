package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	tgcontroller "remontbot/internal/controllers/telegram"
)

// InitRouter вешает маршруты приложения: вебхук Telegram и health.
func InitRouter(e *echo.Echo, tg *tgcontroller.TelegramController) {
	api := e.Group("/api")

	api.POST("/webhooks/telegram", tg.HandleTelegramWebhook)

	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
