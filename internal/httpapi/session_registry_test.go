package httpapi

import (
	"fmt"
	"sync"
	"testing"

	"github.com/atom-sv/leadagent/internal/conversation"
)

func testSession(id string) *conversation.Session {
	return conversation.NewSession(conversation.Config{ID: id})
}

func TestSessionRegistry_PutGetRemove(t *testing.T) {
	sr := NewSessionRegistry()

	if sr.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d, want 0", sr.ActiveCount())
	}

	s1 := testSession("s1")
	if !sr.Put(s1) {
		t.Error("Put() should return true when not draining")
	}
	if sr.ActiveCount() != 1 {
		t.Errorf("ActiveCount() = %d, want 1", sr.ActiveCount())
	}

	if got := sr.Get("s1"); got != s1 {
		t.Error("Get() should return the stored session")
	}
	if got := sr.Get("missing"); got != nil {
		t.Error("Get() should return nil for an unknown id")
	}

	sr.Remove("s1")
	if sr.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d, want 0 after Remove()", sr.ActiveCount())
	}
	if got := sr.Get("s1"); got != nil {
		t.Error("Get() should return nil after Remove()")
	}

	// Removing twice must not unbalance the wait group.
	sr.Remove("s1")
}

func TestSessionRegistry_Draining(t *testing.T) {
	sr := NewSessionRegistry()

	if sr.IsDraining() {
		t.Error("IsDraining() should be false initially")
	}

	if !sr.Put(testSession("before")) {
		t.Error("Put() should succeed before draining")
	}

	sr.StartDraining()

	if !sr.IsDraining() {
		t.Error("IsDraining() should be true after StartDraining()")
	}
	if sr.Put(testSession("after")) {
		t.Error("Put() should fail while draining")
	}

	// Wait() unblocks once the pre-drain session is removed.
	done := make(chan struct{})
	go func() {
		sr.Wait()
		close(done)
	}()

	sr.Remove("before")
	<-done
}

func TestSessionRegistry_ConcurrentPutRemove(t *testing.T) {
	sr := NewSessionRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s := testSession(fmt.Sprintf("session-%d", n))
			if sr.Put(s) {
				sr.Remove(s.ID())
			}
		}(i)
	}
	wg.Wait()

	sr.Wait() // must not block with balanced Put/Remove
}

func TestSessionRegistry_Active(t *testing.T) {
	sr := NewSessionRegistry()
	sr.Put(testSession("x"))
	sr.Put(testSession("y"))

	active := sr.Active()
	if len(active) != 2 {
		t.Errorf("Active() returned %d sessions, want 2", len(active))
	}
}
