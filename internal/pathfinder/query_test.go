package pathfinder

import (
	"net/url"
	"testing"
)

func TestOperationEncode(t *testing.T) {
	t.Run("fetchPlaylist", func(t *testing.T) {
		got, err := FetchPlaylist.Encode(PlaylistVars("37i9dQZF1EfWFiI7QfIAKq", 50, 50))
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}

		want := "operationName=fetchPlaylist" +
			"&variables=%7B%22uri%22%3A+%22spotify%3Aplaylist%3A37i9dQZF1EfWFiI7QfIAKq%22%2C+%22offset%22%3A+50%2C+%22limit%22%3A+50%7D" +
			"&extensions=%7B%22persistedQuery%22%3A+%7B%22version%22%3A+1%2C+%22sha256Hash%22%3A+%2219ff1327c29e99c208c86d7a9d8f1929cfdf3d3202a0ff4253c821f1901aa94d%22%7D%7D"
		if got != want {
			t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("empty variables", func(t *testing.T) {
		got, err := ProfileAttributes.Encode(Vars{})
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}

		want := "operationName=profileAttributes&variables=%7B%7D" +
			"&extensions=%7B%22persistedQuery%22%3A+%7B%22version%22%3A+1%2C+%22sha256Hash%22%3A+%2253bcb064f6cd18c23f752bc324a791194d20df612d8e1239c735144ab0399ced%22%7D%7D"
		if got != want {
			t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("decodes back", func(t *testing.T) {
		raw, _ := AccountAttributes.Encode(nil)
		values, err := url.ParseQuery(raw)
		if err != nil {
			t.Fatalf("ParseQuery() error = %v", err)
		}
		if values.Get("operationName") != "accountAttributes" {
			t.Errorf("unexpected operationName %q", values.Get("operationName"))
		}
		if values.Get("variables") != "{}" {
			t.Errorf("unexpected variables %q", values.Get("variables"))
		}
	})
}

func TestVarsJSON(t *testing.T) {
	tc := []struct {
		name string
		vars Vars
		want string
	}{
		{
			name: "nested",
			vars: Vars{{Key: "a", Value: Vars{{Key: "b", Value: true}}}, {Key: "c", Value: nil}},
			want: `{"a": {"b": true}, "c": null}`,
		},
		{
			name: "keeps insertion order",
			vars: Vars{{Key: "z", Value: 1}, {Key: "a", Value: 2}},
			want: `{"z": 1, "a": 2}`,
		},
		{
			name: "escapes non-ascii and controls",
			vars: Vars{{Key: "name", Value: "Café \"ok\"\n🎵 <b>&"}},
			want: `{"name": "Caf\u00e9 \"ok\"\n\ud83c\udfb5 <b>&"}`,
		},
		{
			name: "list",
			vars: Vars{{Key: "ids", Value: []any{"a", 2, false}}},
			want: `{"ids": ["a", 2, false]}`,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.vars.JSON()
			if err != nil {
				t.Fatalf("JSON() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("JSON() = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("unsupported type", func(t *testing.T) {
		if _, err := (Vars{{Key: "f", Value: 1.5}}).JSON(); err == nil {
			t.Error("expected an error for a float value")
		}
	})
}
