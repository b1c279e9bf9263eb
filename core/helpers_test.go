package core

import (
	"context"
	"testing"
)

func seedUsers(ctx context.Context, t *testing.T, userStore UserStore, users ...User) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		id, err := userStore.CreateUser(ctx, u)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	return ids
}

func seedMessages(ctx context.Context, t *testing.T, messageStore MessageStore, messages ...Message) []int64 {
	ids := make([]int64, 0, len(messages))
	for _, m := range messages {
		id, err := messageStore.Insert(ctx, m.SenderID, m.ReceiverID, m.Content, m.Timestamp)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	return ids
}
