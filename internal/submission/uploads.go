package submission

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/justsurfingit/applicant-intake/internal/capture"
	"github.com/justsurfingit/applicant-intake/internal/logger"
)

// Uploader places a candidate's assets in the asset store.
type Uploader struct {
	assets AssetStore
}

func NewUploader(assets AssetStore) *Uploader {
	return &Uploader{assets: assets}
}

// MediaURLs are the results of the video/thumbnail phase. Empty means absent.
type MediaURLs struct {
	VideoURL     string
	ThumbnailURL string
}

func candidatePrefix(orgID, jobID, candidateID string) string {
	return path.Join("orgs", orgID, "jobs", jobID, "candidates", candidateID)
}

// ResumeObjectPath keeps the original filename minus any directory parts.
func ResumeObjectPath(orgID, jobID, candidateID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "resume"
	}
	return path.Join(candidatePrefix(orgID, jobID, candidateID), "resume-"+name)
}

func VideoObjectPath(orgID, jobID, candidateID, mimeType string) string {
	return path.Join(candidatePrefix(orgID, jobID, candidateID), "video."+capture.ExtensionFor(mimeType))
}

func ThumbnailObjectPath(orgID, jobID, candidateID string) string {
	return path.Join(candidatePrefix(orgID, jobID, candidateID), "thumbnail.jpg")
}

// Resume uploads the resume with progress. Failure is fatal to the submission.
func (u *Uploader) Resume(ctx context.Context, orgID, jobID, candidateID string, resume *Asset, onProgress func(float64)) (string, error) {
	p := ResumeObjectPath(orgID, jobID, candidateID, resume.Filename)
	contentType := resume.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := u.assets.UploadWithProgress(ctx, p, bytes.NewReader(resume.Data), int64(len(resume.Data)), contentType, onProgress)
	if err != nil {
		return "", fmt.Errorf("%w: resume: %v", ErrAssetUpload, err)
	}
	return url, nil
}

// Media uploads the optional video (fatal on failure) and then the optional
// thumbnail (best-effort: logged and left empty on failure).
func (u *Uploader) Media(ctx context.Context, orgID, jobID, candidateID string, video *capture.Clip, thumbnail []byte) (MediaURLs, error) {
	var out MediaURLs

	if video != nil && len(video.Data) > 0 {
		p := VideoObjectPath(orgID, jobID, candidateID, video.MimeType)
		url, err := u.assets.Upload(ctx, p, bytes.NewReader(video.Data), int64(len(video.Data)), videoContentType(video.MimeType))
		if err != nil {
			return MediaURLs{}, fmt.Errorf("%w: video: %v", ErrAssetUpload, err)
		}
		out.VideoURL = url
	}

	if len(thumbnail) > 0 {
		p := ThumbnailObjectPath(orgID, jobID, candidateID)
		url, err := u.assets.Upload(ctx, p, bytes.NewReader(thumbnail), int64(len(thumbnail)), "image/jpeg")
		if err != nil {
			logger.WithContext(ctx).Warn("thumbnail upload failed, continuing without", slog.String("path", p), slog.Any("error", err))
		} else {
			out.ThumbnailURL = url
		}
	}

	return out, nil
}

// videoContentType strips codec parameters from a negotiated mime type.
func videoContentType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	if base == "" {
		return capture.FallbackMimeType
	}
	return base
}
