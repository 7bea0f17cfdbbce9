package main

import (
	"flag"
	"log"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

//	@title			Books JSON API
//	@version		1.0
//	@description	Manage a list of books persisted into a single JSON file.
//	@BasePath		/
func main() {
	configFile := flag.String("config", "./config.yml", "path of the yaml configuration file")
	envFile := flag.String("env", "./config.env", "path of the optional environment file")
	flag.Parse()

	app, err := NewApp(*configFile, *envFile)
	if err != nil {
		log.Fatal("application failed to initialized: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details.", err)
	}
}
