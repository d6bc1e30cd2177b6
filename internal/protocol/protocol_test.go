package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bytehow/HotkeyMuzzle/internal/settings"
)

func TestDecodeResponse(t *testing.T) {
	f, err := Decode([]byte(`{"id":"r1","type":"RESPONSE","success":true,"blocking":true}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	resp := f.Response()
	if resp.ID != "r1" || !resp.Success || resp.Blocking == nil || !*resp.Blocking {
		t.Fatalf("Response() = %+v", resp)
	}
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	for _, in := range []string{`{oops`, `{"id":"x"}`, `[]`} {
		if _, err := Decode([]byte(in)); err == nil {
			t.Errorf("Decode(%s) should fail", in)
		}
	}
}

func TestPushesCarryNoID(t *testing.T) {
	for _, msg := range []Message{
		BlockingStateChanged(false),
		SettingsUpdated(settings.Defaults()),
		ShowToast(Toast{Kind: ToastStateChange}),
	} {
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), `"id"`) {
			t.Errorf("%s push carries an id: %s", msg.Type, data)
		}
		if msg.Type.IsRequest() {
			t.Errorf("%s must not be a request type", msg.Type)
		}
	}
}

func TestFalseBlockingIsEncoded(t *testing.T) {
	data, err := json.Marshal(BlockingStateChanged(false))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"blocking":false`) {
		t.Fatalf("encoded push = %s, want explicit blocking false", data)
	}
}

func TestSettingsPushCarriesFullRecord(t *testing.T) {
	msg := SettingsUpdated(settings.Defaults())
	if msg.Settings == nil {
		t.Fatal("settings push without settings")
	}
	got := settings.Merge(*msg.Settings, settings.Settings{})
	if !got.Equal(settings.Defaults()) {
		t.Fatalf("push settings = %+v, want defaults", got)
	}
}

func TestRequestsGetFreshIDs(t *testing.T) {
	a, b := NewRequest(TypeToggleBlocking), NewRequest(TypeToggleBlocking)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids %q and %q must be distinct and non-empty", a.ID, b.ID)
	}
	if !a.Type.IsRequest() || Type("SELF_DESTRUCT").IsRequest() {
		t.Fatal("IsRequest misclassifies types")
	}
}

func TestFailf(t *testing.T) {
	resp := Failf("%s without toast", TypeShowToast)
	if resp.Success || resp.Error != "SHOW_TOAST without toast" || resp.Type != TypeResponse {
		t.Fatalf("Failf = %+v", resp)
	}
}
