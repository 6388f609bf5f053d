package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// MediaInfo describes a stored media file without its content.
type MediaInfo struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	FileName  string `json:"fileName"`
	MediaType string `json:"mediaType"`
	URL       string `json:"url"`
}

// Client is the media-service collaborator. Media ids are owned by that service.
type Client interface {
	GetMedia(ctx context.Context, id string) (MediaInfo, error)
	SaveFile(ctx context.Context, file io.Reader, fileName, caption, fileNameOverride string) (MediaInfo, error)
	RemoveMedia(ctx context.Context, id string) error
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetMedia returns a zero MediaInfo for an empty id.
func (c *HTTPClient) GetMedia(ctx context.Context, id string) (MediaInfo, error) {
	if id == "" {
		return MediaInfo{}, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+id, nil)
	if err != nil {
		return MediaInfo{}, err
	}
	var info MediaInfo
	if err := c.do(req, &info); err != nil {
		return MediaInfo{}, fmt.Errorf("get media %s: %w", id, err)
	}
	return info, nil
}

func (c *HTTPClient) SaveFile(ctx context.Context, file io.Reader, fileName, caption, fileNameOverride string) (MediaInfo, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("multipartFile", fileName)
	if err != nil {
		return MediaInfo{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return MediaInfo{}, err
	}
	if err := w.WriteField("caption", caption); err != nil {
		return MediaInfo{}, err
	}
	if err := w.WriteField("fileNameOverride", fileNameOverride); err != nil {
		return MediaInfo{}, err
	}
	if err := w.Close(); err != nil {
		return MediaInfo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return MediaInfo{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var info MediaInfo
	if err := c.do(req, &info); err != nil {
		return MediaInfo{}, fmt.Errorf("save file %s: %w", fileName, err)
	}
	return info, nil
}

func (c *HTTPClient) RemoveMedia(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/"+id, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("remove media %s: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("media service returned %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
