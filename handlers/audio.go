package handlers

import (
	"net/http"
)

func (h *Handlers) GetAudioStatusHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.AudioStatus())
}

func (h *Handlers) LoadScriptHandler(w http.ResponseWriter, r *http.Request) {
	status, err := h.app.LoadScript(r.Context(), r.PathValue("name"))
	if err != nil {
		writeFailure(w, "load audio script", err)
		return
	}
	writeData(w, http.StatusOK, status)
}

func (h *Handlers) GenerateMeditationHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if !decode(w, r, &body) {
		return
	}

	m, err := h.app.LoadMeditation(r.Context(), body.Theme)
	if err != nil {
		writeFailure(w, "generate meditation", err)
		return
	}
	writeData(w, http.StatusCreated, m)
}

// PlayAudioHandler returns once the current chunk is playing or failed to load.
func (h *Handlers) PlayAudioHandler(w http.ResponseWriter, r *http.Request) {
	status, err := h.app.PlayAudio(r.Context())
	if err != nil {
		writeFailure(w, "play audio", err)
		return
	}
	writeData(w, http.StatusOK, status)
}

func (h *Handlers) PlayAudioChunkHandler(w http.ResponseWriter, r *http.Request) {
	i, ok := pathInt(w, r, "index")
	if !ok {
		return
	}

	status, err := h.app.PlayAudioChunk(r.Context(), i)
	if err != nil {
		writeFailure(w, "play audio chunk", err)
		return
	}
	writeData(w, http.StatusOK, status)
}

func (h *Handlers) StopAudioHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.StopAudio())
}

func (h *Handlers) ResetAudioHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.ResetAudio())
}

// AudioChunkHandler serves the WAV container for a chunk key.
func (h *Handlers) AudioChunkHandler(w http.ResponseWriter, r *http.Request) {
	data, err := h.app.AudioContainer(r.Context(), r.PathValue("key"))
	if err != nil {
		writeFailure(w, "load audio chunk", err)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handlers) GetVisualizationHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.VisualizationStatus())
}

func (h *Handlers) StartVisualizationHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.StartVisualization(r.Context()))
}

func (h *Handlers) PauseVisualizationHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.PauseVisualization())
}

func (h *Handlers) ResetVisualizationHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.ResetVisualization())
}

func (h *Handlers) SetVisualizationSoundHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		On bool `json:"on"`
	}
	if !decode(w, r, &body) {
		return
	}
	writeData(w, http.StatusOK, h.app.SetVisualizationSound(r.Context(), body.On))
}
