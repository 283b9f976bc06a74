package services

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("Expected fresh jti to be valid, got revoked=%v err=%v", revoked, err)
	}

	if err := store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	revoked, _ = store.IsRevoked(ctx, "jti-1")
	if !revoked {
		t.Error("Expected jti-1 to be revoked")
	}

	revoked, _ = store.IsRevoked(ctx, "jti-2")
	if revoked {
		t.Error("Expected jti-2 to be unaffected")
	}
}

func TestMemoryRevocationStore_IgnoresExpiredAndEmpty(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	_ = store.Revoke(ctx, "old", time.Now().Add(-time.Minute))
	_ = store.Revoke(ctx, "", time.Now().Add(time.Hour))

	if revoked, _ := store.IsRevoked(ctx, "old"); revoked {
		t.Error("Expected already-expired token not to be stored")
	}
	if revoked, _ := store.IsRevoked(ctx, ""); revoked {
		t.Error("Expected empty jti never to be revoked")
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordSignin("success")
	m.RecordSignup()
	m.RecordTipCreated()
	m.RecordClassifierCall("error", 0.1)
}
