// Package version 记录 pwless-go 的构建信息，并据此生成请求使用的 User-Agent。
// 版本信息通过 -ldflags 在构建时注入，例如：
//
//	-X github.com/lgc202/pwless-go/version.gitVersion=v0.3.0
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/gosuri/uitable"
)

// Name 是 SDK 在 User-Agent 中使用的产品名
const Name = "pwless-go"

var (
	// gitVersion 是语义化的版本号，格式为 vMAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]
	gitVersion = "v0.0.0-dev"
	// gitCommit 是 $(git rev-parse HEAD) 的输出
	gitCommit = "unknown"
	// gitTreeState 为 clean 或 dirty
	gitTreeState = ""
	// buildDate 是 ISO8601 格式的构建时间
	buildDate = "1970-01-01T00:00:00Z"
)

// Info 包含了版本信息
type Info struct {
	Name         string `json:"name"`
	GitVersion   string `json:"gitVersion"`
	GitCommit    string `json:"gitCommit"`
	GitTreeState string `json:"gitTreeState,omitempty"`
	BuildDate    string `json:"buildDate"`
	GoVersion    string `json:"goVersion"`
	Platform     string `json:"platform"`
}

// String 返回版本号，工作区有未提交改动时附加 -dirty
func (info Info) String() string {
	if info.GitTreeState == "dirty" {
		return info.GitVersion + "-dirty"
	}
	return info.GitVersion
}

// UserAgent 返回形如 pwless-go/v0.3.0 (linux/amd64) 的 User-Agent
func (info Info) UserAgent() string {
	name := info.Name
	if name == "" {
		name = Name
	}
	if info.Platform == "" {
		return name + "/" + info.String()
	}
	return fmt.Sprintf("%s/%s (%s)", name, info.String(), info.Platform)
}

// ToJSON 以格式化的 JSON 返回版本信息
func (info Info) ToJSON() (string, error) {
	s, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal version info: %w", err)
	}
	return string(s), nil
}

// Text 以对齐的表格返回版本信息，空字段不输出
func (info Info) Text() string {
	table := uitable.New()
	table.RightAlign(0)
	table.MaxColWidth = 80
	table.Separator = " "
	table.AddRow("name:", info.Name)
	table.AddRow("gitVersion:", info.GitVersion)
	table.AddRow("gitCommit:", info.GitCommit)
	if info.GitTreeState != "" {
		table.AddRow("gitTreeState:", info.GitTreeState)
	}
	table.AddRow("buildDate:", info.BuildDate)
	table.AddRow("goVersion:", info.GoVersion)
	table.AddRow("platform:", info.Platform)
	return table.String()
}

// Render 按 format (text, json, short) 输出版本信息
func (info Info) Render(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return info.Text(), nil
	case "json":
		return info.ToJSON()
	case "short":
		return info.String(), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or short)", format)
	}
}

// Get 返回当前二进制的版本信息
func Get() Info {
	return Info{
		Name:         Name,
		GitVersion:   gitVersion,
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		BuildDate:    buildDate,
		GoVersion:    runtime.Version(),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// UserAgent 是 Get().UserAgent() 的简写
func UserAgent() string {
	return Get().UserAgent()
}
