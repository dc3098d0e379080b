// Command example demonstrates the typed request facade against a public
// JSON API: endpoint construction, typed decoding, retry wiring and the
// console logger plugin.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aaguseynov/lightnet"
)

type Todo struct {
	UserID    int
	ID        int
	Title     string
	Completed bool
}

func main() {
	client := lightnet.New(
		lightnet.WithMaxRetries(3),
		lightnet.WithInterceptor(lightnet.NewBackoffInterceptor()),
		lightnet.WithPlugins(lightnet.NewConsoleLoggerPlugin()),
		lightnet.WithCodec(lightnet.RawJSONCodec{}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	todo, err := lightnet.Do[Todo](ctx, client, lightnet.Endpoint{
		BaseURL: "https://jsonplaceholder.typicode.com",
		Path:    "/todos/1",
	})
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}

	fmt.Printf("todo #%d: %q (completed: %v)\n", todo.ID, todo.Title, todo.Completed)

	// Fire-and-forget style call with explicit task ID, cancelled early.
	id := lightnet.TaskID("slow-call")
	go func() {
		time.Sleep(50 * time.Millisecond)
		client.CancelRequest(id)
	}()

	_, err = lightnet.Do[Todo](ctx, client, lightnet.Endpoint{
		BaseURL: "https://jsonplaceholder.typicode.com",
		Path:    "/todos/2",
	}, lightnet.WithTaskID(id))
	fmt.Printf("cancelled call result: %v\n", err)
}
