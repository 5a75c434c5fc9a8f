package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	clienterrors "github.com/paul-bokelman/hem/client/internal/errors"
	"github.com/paul-bokelman/hem/client/internal/types"
)

// DefaultRecordingName is the filename browsers attach to a recorded clip.
const DefaultRecordingName = "recording.webm"

// maxAudioResponse caps the processed audio read into memory.
const maxAudioResponse = 64 << 20

// ErrEmptyAudio is returned when there is nothing to upload.
var ErrEmptyAudio = errors.New("audio is empty")

// Respond uploads a recorded clip to the voice pipeline and returns the spoken reply.
func Respond(ctx context.Context, hc types.HTTPClient, baseURL, userID string, audio io.Reader, filename string) (*types.Audio, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	resp, err := postAudio(ctx, hc, "respond", fmt.Sprintf("%s/respond", baseURL), userID, audio, filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, clienterrors.FromResponse(resp, "respond")
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioResponse))
	if err != nil {
		return nil, fmt.Errorf("respond: read body: %w", err)
	}
	return &types.Audio{ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}

// UploadAudio stores a clip server side without processing it.
func UploadAudio(ctx context.Context, hc types.HTTPClient, baseURL, userID string, audio io.Reader, filename string) (*types.Upload, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	resp, err := postAudio(ctx, hc, "upload audio", fmt.Sprintf("%s/upload", baseURL), userID, audio, filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return nil, clienterrors.FromResponse(resp, "upload audio")
	}
	var up types.Upload
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		return nil, fmt.Errorf("upload audio: decode: %w", err)
	}
	return &up, nil
}

// postAudio sends audio as the "file" part of a multipart form.
func postAudio(ctx context.Context, hc types.HTTPClient, op, url, userID string, audio io.Reader, filename string) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if audio == nil {
		return nil, ErrEmptyAudio
	}
	if filename == "" {
		filename = DefaultRecordingName
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	n, err := io.Copy(part, audio)
	if err != nil {
		return nil, fmt.Errorf("%s: read audio: %w", op, err)
	}
	if n == 0 {
		return nil, ErrEmptyAudio
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	setIdentityHeaders(httpReq, userID, "")

	resp, err := hc.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, clienterrors.NewNetworkError(op, err)
	}
	return resp, nil
}
