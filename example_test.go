package impfunc_test

import (
	"errors"
	"fmt"

	"github.com/toejough/impfunc"
)

func ExampleNewFake() {
	fake := impfunc.NewFake(impfunc.Responses{
		"getenv":   impfunc.NewStack("staging", "production"),
		"hostname": impfunc.NewStatic("build-01"),
	})

	first, _ := fake.Call("getenv", "APP_ENV")
	second, _ := fake.Call("getenv", "APP_ENV")
	_, err := fake.Call("getenv", "APP_ENV")
	host, _ := fake.Call("hostname")

	fmt.Println(first, second, errors.Is(err, impfunc.ErrStackConsumed))
	fmt.Println(host, fake.WasCalledTimes("getenv"))
	// Output:
	// staging production true
	// build-01 3
}

func ExampleFakeFunctions_PendingCalls() {
	fake := impfunc.NewFake(impfunc.Responses{
		"a": impfunc.NewStack("x", "y"),
		"b": true,
		"c": func() string { return "c" },
	})

	fmt.Println(fake.PendingCalls())

	_, _ = fake.Call("a")
	_, _ = fake.Call("b")

	fmt.Println(fake.PendingCalls())
	// Output:
	// map[a:2 b:1 c:1]
	// map[a:1 b:0 c:1]
}
