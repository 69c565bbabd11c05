package schema

import (
	"errors"
	"testing"
)

func TestSchema_Match(t *testing.T) {
	s := Schema{Key("tid"), Key(RequestKey)}

	tests := []struct {
		name string
		from vars
		to   vars
		want bool
	}{
		{"equal values", vars{"tid": "7", "request": "r1"}, vars{"tid": "7", "request": "r1"}, true},
		{"different values", vars{"tid": "7"}, vars{"tid": "8"}, false},
		{"missing key on receiver", vars{"tid": "7"}, vars{}, false},
		{"absent request on receiver", vars{"tid": "7", "request": "r1"}, vars{"tid": "7"}, true},
		{"absent request on both", vars{"tid": "7"}, vars{"tid": "7"}, true},
		{"different requests", vars{"tid": "7", "request": "r1"}, vars{"tid": "7", "request": "r2"}, false},
	}

	for _, tt := range tests {
		if got := s.Match(tt.from, tt.to); got != tt.want {
			t.Errorf("%s: Match() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSchema_MatchRenamedKeys(t *testing.T) {
	s := Schema{{From: "out_id", To: "in_id"}}
	if !s.Match(vars{"out_id": "x"}, vars{"in_id": "x"}) {
		t.Error("Match() should compare renamed keys")
	}
	if (Schema{}).Match(vars{}, vars{}) != true {
		t.Error("empty schema should match everything")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Schema{Key("tid")}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	err := Validate(Schema{{From: "", To: "x"}, Key("tid"), Key("tid")})
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	var aggr *AggregateError
	if !errors.As(err, &aggr) {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}
	if len(aggr.Errors) != 2 {
		t.Errorf("Validate() = %d errors, want 2", len(aggr.Errors))
	}

	var validErr *ValidationError
	if !errors.As(err, &validErr) {
		t.Fatal("errors.As should reach the first ValidationError")
	}
	if validErr.Reason != "empty key" {
		t.Errorf("Reason = %q, want %q", validErr.Reason, "empty key")
	}
}
