package models

import "testing"

func TestAskRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *AskRequest
		wantErr bool
	}{
		{"empty query", &AskRequest{Query: ""}, true},
		{"valid query", &AskRequest{Query: "what is the failover procedure?"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScoreScale_String(t *testing.T) {
	cases := []struct {
		scale ScoreScale
		want  string
	}{
		{ScaleBM25, "bm25"},
		{ScaleCosine, "cosine"},
		{ScaleRRF, "rrf"},
		{ScoreScale(99), "unknown"},
	}
	for _, c := range cases {
		if got := c.scale.String(); got != c.want {
			t.Errorf("String(%d) = %q, want %q", int(c.scale), got, c.want)
		}
	}
}
