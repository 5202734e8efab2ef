// Copyright (c) 2026 Mangetsu. All rights reserved.

package useragent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mangetsu-app/mangetsu/pkg/useragent"
)

/*
TestClassify verifies the bucket assignment for representative agents.
*/
func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		device  string
		browser string
		os      string
	}{
		{
			"windows_chrome",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			"desktop", "chrome", "windows",
		},
		{
			"android_firefox",
			"Mozilla/5.0 (Android 14; Mobile; rv:121.0) Gecko/121.0 Firefox/121.0",
			"mobile", "firefox", "android",
		},
		{
			"iphone_safari",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			"mobile", "safari", "ios",
		},
		{
			"macos_edge",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36 Edg/120.0",
			"desktop", "edge", "macos",
		},
		{
			"googlebot",
			"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			"bot", "other", "other",
		},
		{
			"empty",
			"",
			"desktop", "other", "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := useragent.Classify(tt.ua)

			assert.Equal(t, tt.device, info.Device)
			assert.Equal(t, tt.browser, info.Browser)
			assert.Equal(t, tt.os, info.OS)
		})
	}
}
