package thread_test

import (
	"context"
	"fmt"

	thread "github.com/Swind/go-thread"
	"github.com/Swind/go-thread/errors"
)

// ExampleSpawn demonstrates priority inheritance and persistence after death.
func ExampleSpawn() {
	rt, _ := thread.NewRuntime(nil)
	root := rt.Main()
	root.SetPriority(2)

	t := thread.Spawn(root, func(ctx context.Context) error {
		fmt.Println("inside:", thread.Current(ctx).Priority())
		return nil
	})
	_ = t.Join(context.Background())

	fmt.Println("alive:", t.Alive())
	fmt.Println("after death:", t.Priority())

	// Output:
	// inside: 2
	// alive: false
	// after death: 2
}

// ExampleThread_SetPriorityValue demonstrates typed mutation.
func ExampleThread_SetPriorityValue() {
	rt, _ := thread.NewRuntime(nil)
	t := rt.Spawn(nil, nil)
	t.Wait()

	fmt.Println(t.SetPriority(3))

	_, err := t.SetPriorityValue(new(struct{}))
	fmt.Println(errors.Is(err, errors.ErrTypeMismatch), t.Priority())

	// Output:
	// 3
	// true 3
}
