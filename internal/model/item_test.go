package model

import "testing"

func TestFilterSourceTypes(t *testing.T) {
	tests := []struct {
		filter Filter
		want   []SourceType
	}{
		{FilterAll, SourceTypes},
		{FilterDirectMessage, []SourceType{SourceTypeDirectMessage}},
		{FilterTeam, []SourceType{SourceTypeTeamChat, SourceTypeAnnouncement}},
		{FilterTickets, []SourceType{SourceTypeTicketThread}},
		{FilterAlerts, []SourceType{SourceTypeSystemAlert}},
		{Filter("bogus"), nil},
	}

	for _, tt := range tests {
		got := tt.filter.SourceTypes()
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.filter, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.filter, got, tt.want)
				break
			}
		}
	}
}

func TestFilterEnables(t *testing.T) {
	if !FilterTeam.Enables(SourceTypeAnnouncement) {
		t.Error("team filter should enable announcements")
	}
	if FilterTeam.Enables(SourceTypeDirectMessage) {
		t.Error("team filter should not enable direct messages")
	}
	if !FilterAll.Enables(SourceTypeTicketThread) {
		t.Error("all filter should enable every source")
	}
}

func TestNewCountsZeroesEverySource(t *testing.T) {
	counts := NewCounts()
	if len(counts.PerSource) != len(SourceTypes) {
		t.Fatalf("per-source map has %d entries, want %d",
			len(counts.PerSource), len(SourceTypes))
	}
	for st, n := range counts.PerSource {
		if n != 0 {
			t.Errorf("%s starts at %d, want 0", st, n)
		}
	}
}
