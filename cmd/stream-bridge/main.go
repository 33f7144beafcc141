package main

import (
	"github.com/architeacher/svc-stream-bridge/internal/runtime"
)

func main() {
	runtime.NewBridge().Run()
}
