package routes

import (
	"clementus360/mindset/handlers"
	"net/http"
)

// RegisterAudioRoutes registers guided audio and visualization routes
func RegisterAudioRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	mux.HandleFunc("GET /audio", h.GetAudioStatusHandler)
	mux.HandleFunc("POST /audio/scripts/{name}", h.LoadScriptHandler)
	mux.HandleFunc("POST /audio/meditation", h.GenerateMeditationHandler)
	mux.HandleFunc("POST /audio/play", h.PlayAudioHandler)
	mux.HandleFunc("POST /audio/play/{index}", h.PlayAudioChunkHandler)
	mux.HandleFunc("POST /audio/stop", h.StopAudioHandler)
	mux.HandleFunc("POST /audio/reset", h.ResetAudioHandler)
	mux.HandleFunc("GET /audio/chunks/{key}", h.AudioChunkHandler)

	mux.HandleFunc("GET /visualization", h.GetVisualizationHandler)
	mux.HandleFunc("POST /visualization/start", h.StartVisualizationHandler)
	mux.HandleFunc("POST /visualization/pause", h.PauseVisualizationHandler)
	mux.HandleFunc("POST /visualization/reset", h.ResetVisualizationHandler)
	mux.HandleFunc("PUT /visualization/sound", h.SetVisualizationSoundHandler)
}
