package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/rockae-api/internal/application"
	"github.com/oksasatya/rockae-api/pkg/helpers"
)

func sessionKey(sid string) string      { return "auth:session:" + sid }
func userSessionsKey(uid string) string { return "auth:user:sessions:" + uid }

// SessionStore keeps one hash per session plus a set of session ids per user
// so every session of a user can be revoked at once.
type SessionStore struct {
	rdb redis.Cmdable
}

func NewSessionStore(rdb redis.Cmdable) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Save(ctx context.Context, sess application.Session, ttl time.Duration) error {
	key := sessionKey(sess.ID)
	idx := userSessionsKey(sess.UserID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"uid":        sess.UserID,
		"id":         strconv.FormatInt(sess.StorageID, 10),
		"email":      sess.Email,
		"created_at": sess.CreatedAt.Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, ttl)
	pipe.SAdd(ctx, idx, sess.ID)
	pipe.Expire(ctx, idx, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, sid string) (*application.Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	id, _ := strconv.ParseInt(data["id"], 10, 64)
	created, _ := time.Parse(time.RFC3339Nano, data["created_at"])
	return &application.Session{
		ID:        sid,
		UserID:    data["uid"],
		StorageID: id,
		Email:     data["email"],
		CreatedAt: created,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, sess application.Session) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(sess.ID))
	if sess.UserID != "" {
		pipe.SRem(ctx, userSessionsKey(sess.UserID), sess.ID)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) DeleteAllForUser(ctx context.Context, userID string) error {
	idx := userSessionsKey(userID)
	sids, err := s.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, sessionKey(sid))
	}
	keys = append(keys, idx)
	return helpers.RedisDel(ctx, s.rdb, keys...)
}

var _ application.SessionStore = (*SessionStore)(nil)
