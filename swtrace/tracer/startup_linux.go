// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

//go:build linux

package tracer

import (
	"bufio"
	"os"
	"strings"
)

func osName() string {
	f, err := os.Open("/etc/os-release")
	if err != nil {
		return "Linux (Unknown Distribution)"
	}
	defer f.Close()
	name := "Linux (Unknown Distribution)"
	s := bufio.NewScanner(f)
	for s.Scan() {
		parts := strings.SplitN(s.Text(), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if parts[0] == "NAME" {
			name = strings.Trim(parts[1], "\"")
		}
	}
	return name
}

func osVersion() string {
	f, err := os.Open("/etc/os-release")
	if err != nil {
		return "(Unknown Version)"
	}
	defer f.Close()
	version := "(Unknown Version)"
	s := bufio.NewScanner(f)
	for s.Scan() {
		parts := strings.SplitN(s.Text(), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if parts[0] == "VERSION" {
			version = strings.Trim(parts[1], "\"")
		}
	}
	return version
}
