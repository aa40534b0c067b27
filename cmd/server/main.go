package main

import (
	"fmt"
	"os"

	_ "github.com/eleven-am/inference-server/docs"
	"github.com/eleven-am/inference-server/internal/bootstrap"
	"github.com/joho/godotenv"
)

// @title Multimodal Inference Server
// @version 1.0.0
// @description HTTP front end for a pretrained vision+text generative model

// @host localhost:8000
// @BasePath /

func main() {
	_ = godotenv.Load()

	cfg, err := bootstrap.ParseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	bootstrap.Run(cfg)
}
