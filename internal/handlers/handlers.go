// Package handlers holds the bodies behind every tool, resource and prompt
// the demo server exposes. Nothing here knows about the protocol; the server
// package adapts these functions to MCP requests.
package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"
)

const (
	ServerName    = "mcp-simple-demo"
	ServerVersion = "1.0"

	FileNotFound    = "Error: File not found."
	ReadmeNotFound  = "README.md not found"
	readErrorPrefix = "Error reading file: "
)

// HealthStatus is the health_check result.
type HealthStatus struct {
	Status  string `json:"status"`
	Server  string `json:"server"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// WeatherReport is the canned get_weather result.
type WeatherReport struct {
	Location    string `json:"location"`
	Temperature int    `json:"temperature"`
	Conditions  string `json:"conditions"`
	Humidity    int    `json:"humidity"`
}

// ConfigRecord is served as JSON by resource://config.
type ConfigRecord struct {
	Server  string `json:"server"`
	Version string `json:"version"`
	Mode    string `json:"mode"`
}

// HealthCheck reports a fixed status. It never fails.
func HealthCheck() HealthStatus {
	return HealthStatus{
		Status:  "healthy",
		Server:  ServerName,
		Version: ServerVersion,
		Uptime:  "running",
	}
}

// GetWeather echoes location back with canned conditions.
func GetWeather(location string) WeatherReport {
	return WeatherReport{
		Location:    location,
		Temperature: 72,
		Conditions:  "Sunny",
		Humidity:    45,
	}
}

// ServerConfig describes the running server. It is constant.
func ServerConfig() ConfigRecord {
	return ConfigRecord{
		Server:  ServerName,
		Version: ServerVersion,
		Mode:    "development",
	}
}

// ReadReadme returns the text at path, or ReadmeNotFound when the file
// cannot be read.
func ReadReadme(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReadmeNotFound
	}
	return string(data)
}

// ReadFile returns the text content of an arbitrary caller-supplied path.
// Failures are reported in-band as strings: FileNotFound for a missing path,
// "Error reading file: <reason>" for anything else, including content that
// is not valid UTF-8.
//
// The path is not confined to any root directory.
func ReadFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileNotFound
		}
		return readErrorPrefix + err.Error()
	}
	if !utf8.Valid(data) {
		return readErrorPrefix + fmt.Sprintf("%s: invalid UTF-8 text", path)
	}
	return string(data)
}

// CodeReview builds the instruction used to open a code review conversation.
func CodeReview(language string) string {
	return fmt.Sprintf(`You are a meticulous %s code reviewer.
Focus on performance, security, and testing standards.

Please review the following %s code and suggest improvements:`, language, language)
}
