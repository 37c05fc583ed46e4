package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/kit/log"
	"github.com/influx6/faunalink"
	"github.com/influx6/faunalink/client"
	"github.com/influx6/faunalink/client/web"
	"github.com/influx6/faunalink/fields"
)

func init() {
	log.Init(os.Stdout, func() int { return log.DEV }, log.Ldefault)
}

//==============================================================================

var events eventlog

// eventlog provides a concrete implementation of a logger.
type eventlog struct{}

// Log logs all standard log reports.
func (l eventlog) Log(context interface{}, name string, message string, data ...interface{}) {
	log.Dev(fmt.Sprintf("%v", context), name, message, data...)
}

// Error logs all error reports.
func (l eventlog) Error(context interface{}, name string, err error, message string, data ...interface{}) {
	log.Error(fmt.Sprintf("%v", context), name, err, message, data...)
}

//==============================================================================

var context = "example-app"

//==============================================================================

func main() {

	transport, err := web.New(web.Config{
		Endpoint: "https://db.fauna.com",
		Secret:   os.Getenv("FAUNA_SECRET"),
		Timeout:  30 * time.Second,
	})

	if err != nil {
		events.Error(context, "main", err, "Completed")
		os.Exit(1)
	}

	cl := client.New(events, transport)

	status, err := cl.Ping(context, "global", 5*time.Second)
	if err != nil {
		events.Error(context, "main", err, "Completed")
		os.Exit(1)
	}

	fmt.Printf("ping: %s\n", status)

	res, err := cl.Query(context, faunalink.Obj(
		faunalink.KV("data", faunalink.Arr(
			faunalink.Str("alex"),
			faunalink.Str("rob"),
		)),
	))

	if err != nil {
		events.Error(context, "main", err, "Completed")
		os.Exit(1)
	}

	names := fields.Collect(
		fields.Root.At(fields.Key("data")),
		fields.To(fields.Root, fields.AsString),
	)

	list, failure := names.Extract(res)
	if failure != nil {
		events.Error(context, "main", failure, "Completed")
		os.Exit(1)
	}

	fmt.Printf("names: %v\n", list)
}
