package concurrent_test

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KjellKod/concurrent"
)

type Greetings struct {
	greeting string
}

func (g *Greetings) Hello(name string) string {
	return g.greeting + " " + name
}

func (g *Greetings) Shout(name string) (string, error) {
	if name == "" {
		return "", errors.New("nobody to shout at")
	}
	return strings.ToUpper(g.greeting + " " + name), nil
}

// Example_boundCall demonstrates dispatching a method with arguments to the
// background goroutine and reading the result from the future.
func Example_boundCall() {
	obj := concurrent.Of(Greetings{greeting: "Hello"})
	defer obj.Close()

	f := concurrent.Call1(obj, (*Greetings).Hello, "world")
	msg, err := f.Get()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(msg)

	_, err = concurrent.CallErr1(obj, (*Greetings).Shout, "").Get()
	fmt.Println("error:", err)

	// Output:
	// Hello world
	// error: nobody to shout at
}

// Example_closure demonstrates running several operations on the worker as
// one unit.
func Example_closure() {
	obj := concurrent.Of(Greetings{greeting: "Hi"})
	defer obj.Close()

	f := concurrent.Lambda(obj, func(g *Greetings) string {
		g.greeting = "Howdy"
		return g.Hello("partner")
	})
	msg, _ := f.Get()
	fmt.Println(msg)

	// Output:
	// Howdy partner
}

// Example_teardown demonstrates that Close drains pending work and leaves the
// object empty.
func Example_teardown() {
	var log []string
	obj := concurrent.Wrap(&log)

	for _, word := range []string{"drain", "before", "release"} {
		concurrent.Fire(obj, func(l *[]string) { *l = append(*l, word) })
	}
	_ = obj.Close()

	fmt.Println(strings.Join(log, " "))
	fmt.Println("empty:", obj.Empty())

	_, err := concurrent.Lambda(obj, func(l *[]string) int { return len(*l) }).Get()
	fmt.Println(errors.Is(err, concurrent.ErrEmpty))

	// Output:
	// drain before release
	// empty: true
	// true
}
