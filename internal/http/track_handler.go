package http

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"visitortracker/internal/visits"
)

const msgVisitTracked = "Visit tracked successfully"

// TrackVisitParams is the optional JSON body of POST /api/track.
type TrackVisitParams struct {
	PagePath    string `json:"page_path"`
	QueryString string `json:"query_string"`
	SessionID   string `json:"session_id"`
}

type trackVisitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// parseTrackVisitParams never rejects a request: a missing or malformed body
// yields empty params, which the ingestion path fills with defaults.
func parseTrackVisitParams(ctx *cartridge.Context) TrackVisitParams {
	var params TrackVisitParams
	body := ctx.Body()
	if len(body) == 0 {
		return params
	}
	if err := json.Unmarshal(body, &params); err != nil {
		ctx.Logger.Debug("Ignoring malformed track payload", slog.Any("error", err))
		return TrackVisitParams{}
	}
	return params
}

func requestReferer(ctx *cartridge.Context) string {
	if referer := ctx.Get(fiber.HeaderReferer); referer != "" {
		return referer
	}
	return ctx.Get("Referrer")
}

// TrackVisitAction handles POST /api/track
func TrackVisitAction(ctx *cartridge.Context) error {
	params := parseTrackVisitParams(ctx)

	input := &visits.TrackVisitInput{
		IPAddress:   clientIP(ctx.Ctx),
		UserAgent:   ctx.Get(fiber.HeaderUserAgent),
		Referer:     requestReferer(ctx),
		PagePath:    params.PagePath,
		QueryString: params.QueryString,
		SessionID:   params.SessionID,
	}

	if _, err := visits.TrackVisit(ctx.DBManager, ctx.Logger, input); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(trackVisitResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return ctx.JSON(trackVisitResponse{Success: true, Message: msgVisitTracked})
}
