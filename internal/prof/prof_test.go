package prof

import (
	"context"
	"testing"
)

func TestStart_Disabled(t *testing.T) {
	stop, err := Start(context.Background(), Options{Enabled: false})
	if err != nil {
		t.Fatalf("disabled Start: %v", err)
	}
	stop() // must be safe
}

func TestStart_EnabledWithoutServer(t *testing.T) {
	stop, err := Start(context.Background(), Options{Enabled: true})
	if err == nil {
		t.Fatal("expected error for missing server address")
	}
	stop() // still safe
}
