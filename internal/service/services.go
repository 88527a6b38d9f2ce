package service

import (
	"LiqLearns/internal/service/auth"
	"LiqLearns/internal/service/presentation/authoring"
	"LiqLearns/internal/service/presentation/playback"
	"LiqLearns/internal/service/presentation/query"
	"LiqLearns/internal/service/presentation/upload"
)

type Collection struct {
	AuthService      *auth.AuthService
	UploadService    *upload.PresentationUploadService
	QueryService     *query.PresentationQueryService
	AuthoringService *authoring.AuthoringService
	PlaybackService  *playback.PlaybackService
}
