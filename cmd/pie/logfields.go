package main

import "go.uber.org/zap"

func errField(err error) zap.Field                   { return zap.Error(err) }
func pathField(key, path string) zap.Field           { return zap.String(key, path) }
func intField(key string, n int) zap.Field           { return zap.Int(key, n) }
func stringsField(key string, v []string) zap.Field  { return zap.Strings(key, v) }
