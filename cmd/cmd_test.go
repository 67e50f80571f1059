package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/prtgctl/apierr"
)

var prtgEnv = []string{
	"PRTG_URL", "PRTG_API_TOKEN", "PRTG_API_TOKEN_RW", "PRTG_API_TOKEN_RO",
	"PRTG_USERNAME", "PRTG_PASSHASH", "PRTG_PROFILE", "PRTG_CONFIG",
	"PRTG_NO_VERIFY_SSL", "PRTG_VERIFY_SSL", "PRTG_OUTPUT", "PRTG_OUTPUT_FORMAT",
	"PRTG_PRETTY", "PRTG_TIMEOUT", "PRTG_RETRIES", "PRTG_RETRY_DELAY",
	"PRTG_LOG_LEVEL", "PRTG_LOG_FORMAT", "PRTG_DEBUG",
}

// isolate clears PRTG_* variables and points HOME at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range prtgEnv {
		t.Setenv(k, "")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// tableServer answers table.json with the rows whose objid matches
// filter_objid, or all rows when no id is given.
func tableServer(t *testing.T, content string, rows []map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apitoken") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := r.URL.Query().Get("filter_objid")
		matched := []map[string]any{}
		for _, row := range rows {
			if id == "" || fmt.Sprint(row["objid"]) == id {
				matched = append(matched, row)
			}
		}
		body, err := json.Marshal(map[string]any{
			"prtg-version": "24.1.92",
			"treesize":     len(matched),
			content:        matched,
		})
		require.NoError(t, err)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestReadIDs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   bool
		input   string
		want    []string
		wantErr bool
	}{
		{name: "args", args: []string{"2460", " 2461 "}, want: []string{"2460", "2461"}},
		{name: "comma separated", args: []string{"1,2", "3"}, want: []string{"1", "2", "3"}},
		{name: "stdin keeps order", stdin: true, input: "30\n\n10\n  20  \n", want: []string{"30", "10", "20"}},
		{name: "args then stdin", args: []string{"1"}, stdin: true, input: "2\n", want: []string{"1", "2"}},
		{name: "stdin ignored without flag", input: "2\n", args: []string{"1"}, want: []string{"1"}},
		{name: "none", wantErr: true},
		{name: "blank stdin", stdin: true, input: "\n \n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readIDs(tt.args, tt.stdin, strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierr.Is(err, apierr.Validation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeviceList(t *testing.T) {
	isolate(t)

	var query atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.RawQuery)
		assert.Equal(t, "/api/table.json", r.URL.Path)
		fmt.Fprint(w, `{"prtg-version":"24.1.92","treesize":2,"devices":[
			{"objid":2001,"name":"core-sw","status":"Down","status_raw":5,"tags":"linux prod"},
			{"objid":2002,"name":"edge-sw","status":"Down","status_raw":5,"tags":"linux"}]}`)
	}))
	defer server.Close()

	res := execute(t, "", "device", "list",
		"--url", server.URL, "--api-token", "tok", "-o", "csv",
		"--status", "down", "--tag", "linux", "--tag", "prod",
		"--columns", "objid,name,tags")
	require.Equal(t, apierr.ExitOK, res.code, res.stderr)

	sent, _ := query.Load().(string)
	assert.Contains(t, sent, "filter_status=5")
	assert.Contains(t, sent, "filter_tags=%40tag%28linux%29")
	assert.Contains(t, sent, "filter_tags=%40tag%28prod%29")
	assert.Equal(t, "objid,name,tags\n2001,core-sw,linux prod\n", res.stdout)
}

func TestListNormalizesStatusAndPriority(t *testing.T) {
	isolate(t)
	server := tableServer(t, "devices", []map[string]any{
		{"objid": 2001, "name": "core-sw", "status": "Weird", "status_raw": 13, "priority": 9},
		{"objid": 2002, "name": "edge-sw", "status": "Up", "status_raw": 3, "priority": 0},
	})

	res := execute(t, "", "device", "list", "--url", server.URL, "--api-token", "tok", "-o", "json")
	require.Equal(t, apierr.ExitOK, res.code, res.stderr)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	require.Len(t, got, 2)
	assert.Equal(t, true, got[0]["status_unrecognized"])
	assert.Equal(t, float64(5), got[0]["priority"])
	assert.Equal(t, float64(13), got[0]["status_raw"])
	assert.NotContains(t, got[1], "status_unrecognized")
	assert.Equal(t, float64(1), got[1]["priority"])

	res = execute(t, "", "device", "get", "2001", "--url", server.URL, "--api-token", "tok", "-o", "json")
	require.Equal(t, apierr.ExitOK, res.code, res.stderr)

	var one map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &one))
	assert.Equal(t, true, one["status_unrecognized"])
	assert.Equal(t, float64(5), one["priority"])
}

func TestDeviceListValidation(t *testing.T) {
	isolate(t)

	res := execute(t, "", "device", "list", "--url", "prtg.local", "--api-token", "tok", "--status", "broken")
	assert.Equal(t, apierr.ExitValidation, res.code)
	assert.Contains(t, res.stderr, "Error: invalid status")

	res = execute(t, "", "device", "list", "--url", "prtg.local", "--api-token", "tok", "--priority", "9")
	assert.Equal(t, apierr.ExitValidation, res.code)
}

func TestSensorGetPartial(t *testing.T) {
	isolate(t)
	server := tableServer(t, "sensors", []map[string]any{
		{"objid": "A", "name": "ping"},
		{"objid": "C", "name": "http"},
	})

	res := execute(t, "A\nB\nC\n", "sensor", "get", "--stdin",
		"--url", server.URL, "--api-token", "tok", "-o", "json", "--columns", "objid,name")
	require.Equal(t, apierr.ExitOK, res.code, res.stderr)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0]["objid"])
	assert.Equal(t, "C", got[1]["objid"])
	assert.Contains(t, res.stderr, "Warning: sensor not found (id B)")
}

func TestGetNotFoundExitCode(t *testing.T) {
	isolate(t)
	server := tableServer(t, "groups", nil)

	res := execute(t, "", "group", "get", "42", "--url", server.URL, "--api-token", "tok", "-o", "json")
	assert.Equal(t, apierr.ExitNotFound, res.code)

	var doc map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stderr), &doc), res.stderr)
	assert.Equal(t, "NotFoundError", doc["error"]["type"])
}

func TestAuthenticationExitCode(t *testing.T) {
	isolate(t)
	server := tableServer(t, "probes", nil)

	res := execute(t, "", "probe", "list", "--url", server.URL, "--api-token", "wrong", "-o", "table")
	assert.Equal(t, apierr.ExitAuth, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, "Error: "))
}

func TestMissingURL(t *testing.T) {
	isolate(t)

	res := execute(t, "", "device", "list", "--api-token", "tok")
	assert.Equal(t, apierr.ExitValidation, res.code)
	assert.Contains(t, res.stderr, "URL is not configured")
}

func TestDeviceMove(t *testing.T) {
	isolate(t)

	var (
		mu    sync.Mutex
		moved []string
	)
	movedIDs := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), moved...)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/moveobjectnow.htm", r.URL.Path)
		assert.Equal(t, "5666", r.URL.Query().Get("targetid"))
		id := r.URL.Query().Get("id")
		if id == "bad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		mu.Lock()
		moved = append(moved, id)
		mu.Unlock()
		fmt.Fprint(w, "OK")
	}))
	defer server.Close()

	t.Run("dry run sends nothing", func(t *testing.T) {
		res := execute(t, "", "device", "move", "2001", "2002", "--target", "5666", "--dry-run",
			"--url", server.URL, "--api-token", "tok", "-o", "csv")
		require.Equal(t, apierr.ExitOK, res.code, res.stderr)
		assert.Empty(t, movedIDs())
		assert.Equal(t, "objid,targetid,moved\n2001,5666,false\n2002,5666,false\n", res.stdout)
		assert.Contains(t, res.stderr, "Would move device 2002 to group 5666")
	})

	t.Run("partial failure exits non-zero", func(t *testing.T) {
		res := execute(t, "", "device", "move", "2001", "bad", "--target-group", "5666",
			"--url", server.URL, "--api-token", "tok", "-o", "csv")
		assert.Equal(t, apierr.ExitNotFound, res.code)
		assert.Equal(t, []string{"2001"}, movedIDs())

		lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "objid,targetid,moved,error", lines[0])
		assert.Equal(t, "2001,5666,true,", lines[1])
		assert.True(t, strings.HasPrefix(lines[2], "bad,5666,false,"))
	})

	t.Run("target required", func(t *testing.T) {
		res := execute(t, "", "device", "move", "2001", "--url", server.URL, "--api-token", "tok")
		assert.Equal(t, apierr.ExitValidation, res.code)
	})
}

func TestSensorData(t *testing.T) {
	isolate(t)

	var lines []string
	lines = append(lines, "Date Time,Value,Coverage")
	for i := 1; i <= 80; i++ {
		lines = append(lines, fmt.Sprintf("row%d,%d,100 %%", i, i))
	}
	csvBody := strings.Join(lines, "\n") + "\n"

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/api/historicdata.csv", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("avg"))
		fmt.Fprint(w, csvBody)
	}))
	defer server.Close()

	t.Run("non-terminal stdout gets every row", func(t *testing.T) {
		res := execute(t, "", "sensor", "data", "2460", "--hours", "12",
			"--url", server.URL, "--api-token", "tok")
		require.Equal(t, apierr.ExitOK, res.code, res.stderr)
		assert.Equal(t, csvBody, res.stdout)
		assert.NotContains(t, res.stderr, "Showing last")
	})

	t.Run("files per sensor", func(t *testing.T) {
		dir := t.TempDir()
		pattern := filepath.Join(dir, "sensor-{id}.csv")
		res := execute(t, "", "sensor", "data", "1", "2", "--days", "1", "--output", pattern,
			"--url", server.URL, "--api-token", "tok")
		require.Equal(t, apierr.ExitOK, res.code, res.stderr)

		for _, id := range []string{"1", "2"} {
			data, err := os.ReadFile(filepath.Join(dir, "sensor-"+id+".csv"))
			require.NoError(t, err)
			assert.Equal(t, csvBody, string(data))
		}
	})

	t.Run("several sensors need a placeholder", func(t *testing.T) {
		before := requests.Load()
		res := execute(t, "", "sensor", "data", "1", "2", "--output", "out.csv",
			"--url", server.URL, "--api-token", "tok")
		assert.Equal(t, apierr.ExitValidation, res.code)
		assert.Equal(t, before, requests.Load())
	})

	t.Run("raw range over 40 days fails before any request", func(t *testing.T) {
		before := requests.Load()
		res := execute(t, "", "sensor", "data", "2460",
			"--start", "2024-01-01", "--end", "2024-03-01",
			"--url", server.URL, "--api-token", "tok")
		assert.Equal(t, apierr.ExitValidation, res.code)
		assert.Contains(t, res.stderr, "40-day maximum")
		assert.Equal(t, before, requests.Load())
	})

	t.Run("sixth request in a minute is refused locally", func(t *testing.T) {
		before := requests.Load()
		dir := t.TempDir()
		res := execute(t, "", "sensor", "data", "1", "2", "3", "4", "5", "6",
			"--hours", "1", "--output", filepath.Join(dir, "{id}.csv"),
			"--url", server.URL, "--api-token", "tok")
		assert.Equal(t, apierr.ExitAPI, res.code)
		assert.Contains(t, res.stderr, "rate limit")
		assert.Equal(t, before+5, requests.Load())
	})

	t.Run("conflicting range flags", func(t *testing.T) {
		res := execute(t, "", "sensor", "data", "1", "--days", "1", "--hours", "2",
			"--url", server.URL, "--api-token", "tok")
		assert.Equal(t, apierr.ExitValidation, res.code)
	})
}

func TestSensorDataHelpExplainsOutputFlag(t *testing.T) {
	isolate(t)

	res := execute(t, "", "sensor", "data", "--help")
	require.Equal(t, apierr.ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "global -o/--output format flag does not")
	assert.Contains(t, res.stdout, "--format")

	res = execute(t, "", "sensor", "data", "1", "-o", "table", "--url", "prtg.local", "--api-token", "tok")
	assert.NotEqual(t, apierr.ExitOK, res.code)
	assert.Contains(t, res.stderr, "unknown shorthand flag")
}

func TestConfigInitListShow(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "prtg.ini")

	res := execute(t, "", "config", "init", "--config", path,
		"--url", "prtg.example.com", "--api-token", "abcdef123456")
	require.Equal(t, apierr.ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, `Wrote profile "default"`)

	res = execute(t, "", "config", "init", "--config", path, "--profile", "lab")
	require.Equal(t, apierr.ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "set api_token")

	res = execute(t, "", "config", "list", "--config", path, "-o", "csv")
	require.Equal(t, apierr.ExitOK, res.code, res.stderr)
	assert.Equal(t, "name,url,token,verify_ssl\n"+
		"default,https://prtg.example.com,true,true\n"+
		"lab,https://prtg.example.com,false,true\n", res.stdout)

	res = execute(t, "", "config", "show", "--config", path, "-o", "json")
	require.Equal(t, apierr.ExitOK, res.code, res.stderr)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &shown))
	assert.Equal(t, "https://prtg.example.com", shown["url"])
	assert.Equal(t, "********3456", shown["token"])
	assert.NotContains(t, res.stdout, "abcdef123456")
}

func TestConfigCheck(t *testing.T) {
	home := isolate(t)
	server := tableServer(t, "groups", []map[string]any{{"objid": "0", "name": "Root"}})

	path := filepath.Join(home, "config")
	content := fmt.Sprintf("[good]\nurl = %s\napi_token = tok\n\n[bad]\nurl = %s\napi_token = nope\n", server.URL, server.URL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	res := execute(t, "", "config", "check", "--config", path, "-o", "csv")
	assert.Equal(t, apierr.ExitAuth, res.code)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "profile,url,ok,version,error", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "bad,"+server.URL+",false,,"))
	assert.Equal(t, "good,"+server.URL+",true,24.1.92,", lines[2])
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3", "2026-01-01")
	defer SetVersion("dev", "unknown")

	res := execute(t, "", "version")
	require.Equal(t, apierr.ExitOK, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "prtg version 1.2.3 (built 2026-01-01"))
}

func TestCurrentVersion(t *testing.T) {
	defer SetVersion("dev", "unknown")

	SetVersion("dev", "")
	_, err := currentVersion()
	assert.True(t, apierr.Is(err, apierr.Validation))

	SetVersion("v1.4.0", "")
	v, err := currentVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", v.String())
}

func TestUnknownOutputFormat(t *testing.T) {
	isolate(t)

	res := execute(t, "", "device", "list", "--url", "prtg.local", "--api-token", "tok", "-o", "xml")
	assert.Equal(t, apierr.ExitValidation, res.code)
	assert.Contains(t, res.stderr, "unknown output format")
}
