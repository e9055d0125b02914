package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/John-Robertt/nifcheck/internal/domain"
	"github.com/John-Robertt/nifcheck/internal/lookup"
)

const knownEntityPage = `<html><body><div class="big-nif">500960046</div><div class="search-title"><a>EMPRESA EXEMPLO LDA</a></div></body></html>`

func TestParseArgs(t *testing.T) {
	cli, _, err := parseArgs([]string{"--json", "--timeout", "5s", "--base-url=http://x.test/", "-v", "500960046"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if cli.NIF != "500960046" || !cli.JSON || !cli.Verbose || cli.Timeout != "5s" {
		t.Fatalf("解析结果不符合预期：%+v", cli)
	}
	if !cli.BaseURLSet || cli.BaseURL != "http://x.test/" {
		t.Fatalf("--base-url 解析不正确：%+v", cli)
	}

	cli, _, err = parseArgs([]string{"--", "-123"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if cli.NIF != "-123" {
		t.Fatalf("-- 之后应视为位置参数，实际 %q", cli.NIF)
	}
}

func TestParseArgs_Errors(t *testing.T) {
	cases := [][]string{
		{},
		{"--json"},
		{"500960046", "123456789"},
		{"--nope", "500960046"},
		{"500960046", "--proxy"},
		{"--", "1", "2"},
	}
	for _, args := range cases {
		if _, _, err := parseArgs(args); err == nil {
			t.Fatalf("args=%q 期望错误，但得到 nil", args)
		}
	}
}

func TestRun_MissingArgumentIsUsageError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("期望退出码 2，实际 %d", code)
	}
	if stdout.Len() != 0 {
		t.Fatalf("参数错误时 stdout 应为空：%q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("stderr 应包含用法说明：%q", stderr.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"--help"}, &stdout, &stderr); code != 0 {
		t.Fatalf("期望退出码 0，实际 %d", code)
	}
	if !strings.Contains(stdout.String(), "Usage:") {
		t.Fatalf("stdout 应包含用法说明：%q", stdout.String())
	}
}

func TestParseArgs_HelpOnlyAsFlag(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"500960046", "-h"}, {"-h", "--json"}} {
		if _, help, _ := parseArgs(args); !help {
			t.Fatalf("args=%q 期望识别为 help", args)
		}
	}

	// 作为参数值或 -- 之后的位置参数时不是 help。
	cli, help, err := parseArgs([]string{"--user-agent", "--help", "500960046"})
	if err != nil || help {
		t.Fatalf("参数值 --help 不应触发帮助：help=%v err=%v", help, err)
	}
	if cli.UserAgent != "--help" {
		t.Fatalf("--user-agent 应取到值 --help，实际 %q", cli.UserAgent)
	}
	cli, help, err = parseArgs([]string{"--", "--help"})
	if err != nil || help || cli.NIF != "--help" {
		t.Fatalf("-- 之后应视为位置参数：cli=%+v help=%v err=%v", cli, help, err)
	}
}

func TestRun_HelpAsFlagValueStillChecks(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, knownEntityPage)
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--user-agent", "help", "--base-url", srv.URL, "500960046"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("期望退出码 0，实际 %d stderr=%s", code, stderr.String())
	}
	if strings.Contains(stdout.String(), "Usage:") {
		t.Fatalf("参数值 help 不应触发帮助：%q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "status: Valid and known entity.") {
		t.Fatalf("应完成远程查询：%q", stdout.String())
	}
	if gotUA != "help" {
		t.Fatalf("期望 UA=help，实际 %q", gotUA)
	}
}

func TestRun_PositionalHelpIsNIF(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--offline", "help"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("期望退出码 0，实际 %d", code)
	}
	if stdout.String() != "NIF help is invalid (local)\n" {
		t.Fatalf("位置参数 help 应按 NIF 处理：%q", stdout.String())
	}
}

func TestRun_InvalidFlagValue(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--base-url", "ftp://x", "500960046"}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("期望退出码 2，实际 %d", code)
	}
	if !strings.Contains(stderr.String(), "--base-url") {
		t.Fatalf("stderr 应指出出错参数：%q", stderr.String())
	}
	// 非 missing_nif 的配置错误只给出提示，不重复打印整段用法。
	if strings.Contains(stderr.String(), "Usage:") || !strings.Contains(stderr.String(), "nifcheck --help") {
		t.Fatalf("stderr 提示不符合预期：%q", stderr.String())
	}
}

func TestRun_EmptyAfterNormalizeIsMissingNIF(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--offline", "PT"}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("期望退出码 2，实际 %d", code)
	}
	if !strings.Contains(stderr.String(), "missing_nif") || !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("缺少 NIF 时应打印错误码与用法：%q", stderr.String())
	}
}

func TestRun_TextOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, knownEntityPage)
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--base-url", srv.URL + "/", "PT 500 960 046"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("期望退出码 0，实际 %d stderr=%s", code, stderr.String())
	}
	want := "NIF 500960046 status: Valid and known entity.\nNIF 500960046 is valid (local)\n"
	if stdout.String() != want {
		t.Fatalf("stdout 不符合预期：\n%s\n期望：\n%s", stdout.String(), want)
	}
}

func TestRun_JSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--json", "--base-url", srv.URL, "123456789"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("远程失败也应退出码 0，实际 %d", code)
	}

	var rep domain.Report
	if err := json.Unmarshal(stdout.Bytes(), &rep); err != nil {
		t.Fatalf("stdout 不是合法的 Report JSON：%v\nstdout=%q", err, stdout.String())
	}
	if rep.NIF != "123456789" || !rep.LocalValid {
		t.Fatalf("本地校验结果不符合预期：%+v", rep)
	}
	if rep.Remote == nil || rep.Remote.Status != domain.StatusUnknown {
		t.Fatalf("HTTP 502 应收敛为 unknown：%+v", rep.Remote)
	}
	if !strings.Contains(rep.Remote.Error, "HTTP 502") {
		t.Fatalf("remote.error 应包含状态码：%q", rep.Remote.Error)
	}
	// 诊断只走 stderr。
	if !strings.Contains(stderr.String(), "HTTP 502") {
		t.Fatalf("stderr 应包含诊断：%q", stderr.String())
	}
}

func TestRun_OfflineSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("--offline 时不应发起请求")
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--offline", "--base-url", srv.URL, "451234561"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("期望退出码 0，实际 %d", code)
	}
	if stdout.String() != "NIF 451234561 is valid (local)\n" {
		t.Fatalf("stdout 不符合预期：%q", stdout.String())
	}
}

func TestEmitReport_EachStatus(t *testing.T) {
	for _, s := range domain.RemoteStatuses() {
		var buf bytes.Buffer
		rep := domain.Report{NIF: "500960046", LocalValid: true, Remote: &domain.RemoteResult{Status: s, Rule: lookup.RuleKnownEntity}}
		if err := emitReport(&buf, rep, false); err != nil {
			t.Fatalf("不期望错误：%v", err)
		}
		if !strings.Contains(buf.String(), s.Describe()) {
			t.Fatalf("输出应包含 %q：%q", s.Describe(), buf.String())
		}
	}
}
