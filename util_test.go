package await_test

import "github.com/awaitkit/await"

// end completes a void frame; the common final step in these tests.
func end(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
	return fr.Complete(await.Void{})
}
