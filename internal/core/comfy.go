package core

import (
	"context"
	"io"

	"github.com/target/promptwait/internal/comfy"
)

// ComfyAPI is the remote generation service as the runner sees it.
// *comfy.Client is the production implementation.
type ComfyAPI interface {
	ClientID() string
	SystemStats(ctx context.Context) (*comfy.SystemStats, error)
	UploadImage(ctx context.Context, name string, r io.Reader, opts comfy.UploadOptions) (comfy.UploadedImage, error)
	Submit(ctx context.Context, job comfy.JobDescription) (comfy.PromptID, error)
	History(ctx context.Context, id comfy.PromptID) (*comfy.JobRecord, bool, error)
	ViewURL(a comfy.Artifact) string
}

var _ ComfyAPI = (*comfy.Client)(nil)
