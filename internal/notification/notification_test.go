package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		n, err := svc.Notify(ctx, "u1", title, "msg")
		require.NoError(t, err)
		require.Equal(t, StatusUnread, n.Status)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "third", list[0].Title)
	require.Equal(t, "first", list[2].Title)
}
