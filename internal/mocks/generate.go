// Package mocks provides mock implementations for testing promptwait.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the service ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockComfyAPI(ctrl)
//	api.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(comfy.PromptID("xyz"), nil)
package mocks

// Generate mock for ComfyAPI interface from internal/core package.
// This creates MockComfyAPI with methods for all ComfyAPI interface methods:
// ClientID, SystemStats, UploadImage, Submit, History, ViewURL
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=comfy_api_mock.go github.com/target/promptwait/internal/core ComfyAPI
