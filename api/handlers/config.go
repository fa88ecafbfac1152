// ABOUTME: Configuration handlers for the Huma API
// ABOUTME: Provides HTTP endpoints for reading and partially updating the config file

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"rss-downloader-api/core/domain"
)

// ConfigStore interface defines the methods needed from the configuration store
type ConfigStore interface {
	Get() domain.Config
	Version() int
	Update(partial map[string]interface{}) error
}

// ConfigHandler handles configuration HTTP requests
type ConfigHandler struct {
	store ConfigStore
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(store ConfigStore) *ConfigHandler {
	return &ConfigHandler{store: store}
}

// RegisterRoutes registers all configuration routes
func (h *ConfigHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getConfig",
		Method:      http.MethodGet,
		Path:        "/config",
		Summary:     "Read the current configuration",
		Tags:        []string{"Config"},
	}, h.GetConfig)

	huma.Register(api, huma.Operation{
		OperationID: "updateConfig",
		Method:      http.MethodPut,
		Path:        "/config",
		Summary:     "Apply a partial configuration update",
		Description: "Deep-merges the given document over the current configuration, validates the result, and persists it",
		Tags:        []string{"Config"},
	}, h.UpdateConfig)
}

// GetConfigOutput defines the output for the GetConfig operation
type GetConfigOutput struct {
	Body struct {
		Version int           `json:"version" doc:"Monotonic counter bumped on every successful reload or update"`
		Config  domain.Config `json:"config"`
	}
}

// GetConfig handles the GET /config endpoint
func (h *ConfigHandler) GetConfig(ctx context.Context, input *struct{}) (*GetConfigOutput, error) {
	output := &GetConfigOutput{}
	output.Body.Version = h.store.Version()
	output.Body.Config = h.store.Get()
	return output, nil
}

// UpdateConfigInput defines the input for the UpdateConfig operation
type UpdateConfigInput struct {
	Body map[string]interface{} `doc:"Partial configuration document to merge over the current one"`
}

// UpdateConfigOutput defines the output for the UpdateConfig operation
type UpdateConfigOutput struct {
	Body struct {
		Version int `json:"version"`
	}
}

// UpdateConfig handles the PUT /config endpoint
func (h *ConfigHandler) UpdateConfig(ctx context.Context, input *UpdateConfigInput) (*UpdateConfigOutput, error) {
	if err := h.store.Update(input.Body); err != nil {
		return nil, toHumaError(err)
	}

	output := &UpdateConfigOutput{}
	output.Body.Version = h.store.Version()
	return output, nil
}
