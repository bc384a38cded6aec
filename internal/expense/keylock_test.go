package expense

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("keyLock", func() {
	It("should serialise holders of the same key", func() {
		locks := newKeyLock()
		var inside, peak int32
		var wg sync.WaitGroup

		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock("a")
				n := atomic.AddInt32(&inside, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				unlock()
			}()
		}
		wg.Wait()

		Expect(peak).To(Equal(int32(1)))
	})

	It("should not block different keys", func() {
		locks := newKeyLock()
		unlockA := locks.Lock("a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			locks.Lock("b")()
			close(done)
		}()
		Eventually(done).Should(BeClosed())
	})

	It("should forget keys once released", func() {
		locks := newKeyLock()
		locks.Lock("a")()
		locks.Lock("b")()

		locks.mu.Lock()
		defer locks.mu.Unlock()
		Expect(locks.locks).To(BeEmpty())
	})
})
