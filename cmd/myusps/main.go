package main

import (
	"myusps/cmd/myusps/commands"
	"myusps/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
