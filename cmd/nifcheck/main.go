package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/John-Robertt/nifcheck/internal/config"
	"github.com/John-Robertt/nifcheck/internal/domain"
	"github.com/John-Robertt/nifcheck/internal/infra/httpx"
	"github.com/John-Robertt/nifcheck/internal/infra/logx"
	"github.com/John-Robertt/nifcheck/internal/lookup"
	"github.com/John-Robertt/nifcheck/internal/nif"
)

func main() {
	if code := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// run 返回进程退出码：0 完成检查（无论结果如何），1 运行环境错误，2 参数错误。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli, help, err := parseArgs(args)
	if help {
		printUsage(stdout)
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
		printUsage(stderr)
		return 2
	}

	eff, err := config.Resolve(cli)
	if err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n", err)
		if config.Code(err) == config.ErrCodeMissingNIF {
			// 例如只给了 "PT"：规范化后为空，直接给出完整用法。
			fmt.Fprintln(stderr)
			printUsage(stderr)
		} else {
			fmt.Fprintln(stderr, `使用 "nifcheck --help" 查看用法。`)
		}
		return 2
	}

	logger := logx.New(stderr, logx.Config{Level: eff.LogLevel, Format: eff.LogFormat})

	rep := domain.Report{NIF: eff.NIF, CheckedAt: time.Now()}
	if !eff.Offline {
		hc, err := httpx.NewClient(httpx.Options{
			ProxyURL:  eff.ProxyURL,
			Timeout:   eff.Timeout,
			UserAgent: eff.UserAgent,
		})
		if err != nil {
			fmt.Fprintf(stderr, "初始化 HTTP client 失败：%v\n", err)
			return 1
		}
		ck := lookup.Checker{BaseURL: eff.BaseURL, Client: hc, Logger: logger}
		res := ck.Check(ctx, eff.NIF)
		rep.Remote = &domain.RemoteResult{
			URL:    res.URL,
			Status: res.Status,
			Rule:   res.Rule,
			Error:  errString(res.Err),
		}
	}
	rep.LocalValid = nif.ValidLocal(eff.NIF)
	rep.Finalize()

	if err := emitReport(stdout, rep, eff.JSON); err != nil {
		fmt.Fprintf(stderr, "写出结果失败：%v\n", err)
		return 1
	}
	return 0
}

// valueFlags 是需要一个值的参数（支持 --x v 与 --x=v 两种写法）。
var valueFlags = map[string]func(*config.CLIArgs, string){
	"--base-url":   func(c *config.CLIArgs, v string) { c.BaseURL, c.BaseURLSet = v, true },
	"--proxy":      func(c *config.CLIArgs, v string) { c.ProxyURL = v },
	"--timeout":    func(c *config.CLIArgs, v string) { c.Timeout = v },
	"--user-agent": func(c *config.CLIArgs, v string) { c.UserAgent = v },
	"--log-format": func(c *config.CLIArgs, v string) { c.LogFormat = v },
}

// parseArgs 解析参数；help=true 表示遇到了 -h/--help（只认参数位置，不认参数值）。
func parseArgs(args []string) (cli config.CLIArgs, help bool, err error) {
	nifSet := false

	for i := 0; i < len(args); i++ {
		a := args[i]
		name, val, hasVal := strings.Cut(a, "=")
		if set, ok := valueFlags[name]; ok {
			if !hasVal {
				if i+1 >= len(args) {
					return config.CLIArgs{}, false, fmt.Errorf("%s 需要一个值", name)
				}
				i++
				val = args[i]
			}
			set(&cli, val)
			continue
		}

		switch {
		case isHelp(a):
			return config.CLIArgs{}, true, nil
		case a == "--offline":
			cli.Offline = true
		case a == "--json":
			cli.JSON = true
		case a == "-v" || a == "--verbose":
			cli.Verbose = true
		case a == "--":
			// 之后的内容一律视为位置参数。
			for _, rest := range args[i+1:] {
				if nifSet {
					return config.CLIArgs{}, false, fmt.Errorf("只能指定一个 NIF，多余的参数：%q", rest)
				}
				cli.NIF, nifSet = rest, true
			}
			i = len(args)
		case strings.HasPrefix(a, "-"):
			return config.CLIArgs{}, false, fmt.Errorf("未知参数 %q", a)
		default:
			if nifSet {
				return config.CLIArgs{}, false, fmt.Errorf("只能指定一个 NIF，多余的参数：%q", a)
			}
			cli.NIF, nifSet = a, true
		}
	}

	if !nifSet {
		return config.CLIArgs{}, false, fmt.Errorf("缺少 NIF 参数")
	}
	return cli, false, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage:
  nifcheck [flags] <NIF>

Checks a Portuguese NIF locally (mod 11 check digit) and against nif.pt.

Flags:
  --offline             local check only, no network request
  --json                print one JSON report instead of text lines
  --base-url <url>      lookup endpoint (default https://www.nif.pt/)
  --proxy <url>         send the request through this proxy
  --timeout <duration>  overall request timeout, e.g. 10s (default: none)
  --user-agent <ua>     User-Agent header (default: Go default)
  --log-format <fmt>    diagnostics format on stderr: text|json
  -v, --verbose         debug diagnostics on stderr
  -h, --help            show this help
`)
}

func emitReport(w io.Writer, rep domain.Report, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(rep)
	}
	if rep.Remote != nil {
		if _, err := fmt.Fprintf(w, "NIF %s status: %s\n", rep.NIF, rep.Remote.Status.Describe()); err != nil {
			return err
		}
	}
	verdict := "invalid"
	if rep.LocalValid {
		verdict = "valid"
	}
	_, err := fmt.Fprintf(w, "NIF %s is %s (local)\n", rep.NIF, verdict)
	return err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
