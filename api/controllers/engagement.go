package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/api/responses"
	"github.com/ssmdetailing/ssm-backend/api/validators"
	"github.com/ssmdetailing/ssm-backend/internal/engagement"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	"github.com/ssmdetailing/ssm-backend/pkg/pagination"
)

func engagementUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
}

type likeMutation func(ctx context.Context, reelID uuid.UUID, sessionID string) (engagement.State, error)

func likeHandler(svc engagement.Service, logg *logger.Logger, pick func(engagement.Service) likeMutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			engagementUnavailable(w, r, logg)
			return
		}
		reelID, err := validators.ParseUUIDParam(r, "reelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sid, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := pick(svc)(r.Context(), reelID, sid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// ReelLikeToggle flips the like of the calling session.
func ReelLikeToggle(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return likeHandler(svc, logg, func(s engagement.Service) likeMutation { return s.Toggle })
}

// ReelLike is idempotent: liking twice keeps a single like.
func ReelLike(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return likeHandler(svc, logg, func(s engagement.Service) likeMutation { return s.Like })
}

func ReelUnlike(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return likeHandler(svc, logg, func(s engagement.Service) likeMutation { return s.Unlike })
}

// ReelsLiked lists the reels liked by the calling session. With ?ids= it
// answers a liked flag per requested reel instead.
func ReelsLiked(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			engagementUnavailable(w, r, logg)
			return
		}
		sid, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ids, err := validators.ParseQueryUUIDs(r, "ids", engagement.MaxBatchIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(ids) > 0 {
			flags, err := svc.LikedAmong(r.Context(), sid, ids)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, flags)
			return
		}
		liked, err := svc.LikedBy(r.Context(), sid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if liked == nil {
			liked = []uuid.UUID{}
		}
		responses.WriteSuccess(w, liked)
	}
}

func ReelsCounts(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			engagementUnavailable(w, r, logg)
			return
		}
		ids, err := validators.ParseQueryUUIDs(r, "ids", engagement.MaxBatchIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(ids) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ids is required").
				WithDetails(map[string]any{"field": "ids"}))
			return
		}
		counts, err := svc.Counts(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}

func ReelCommentsList(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			engagementUnavailable(w, r, logg)
			return
		}
		reelID, err := validators.ParseUUIDParam(r, "reelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListComments(r.Context(), reelID, pagination.Params{Limit: limit, Cursor: validators.QueryString(r, "cursor")})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ReelCommentsAdd(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			engagementUnavailable(w, r, logg)
			return
		}
		reelID, err := validators.ParseUUIDParam(r, "reelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sid, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body engagement.CommentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.AddComment(r.Context(), reelID, sid, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func AdminReelCommentDelete(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			engagementUnavailable(w, r, logg)
			return
		}
		reelID, err := validators.ParseUUIDParam(r, "reelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		commentID, err := validators.ParseUUIDParam(r, "commentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		counts, err := svc.DeleteComment(r.Context(), reelID, commentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}
