package apiclient

import (
	"maps"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

// Jar holds the upstream cookies of one identity. The dashboard fans out
// concurrent calls with the same jar, so access is locked.
type Jar struct {
	mu      sync.Mutex
	cookies map[string]string
	changed bool
}

func NewJar(cookies map[string]string) *Jar {
	if cookies == nil {
		cookies = map[string]string{}
	}
	return &Jar{cookies: maps.Clone(cookies)}
}

func (j *Jar) Snapshot() map[string]string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return maps.Clone(j.cookies)
}

func (j *Jar) Get(name string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cookies[name]
}

func (j *Jar) Empty() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.cookies) == 0
}

// Changed reports whether a response set or removed a cookie since creation.
func (j *Jar) Changed() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.changed
}

func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.cookies) > 0 {
		j.changed = true
	}
	j.cookies = map[string]string{}
}

func (j *Jar) absorb(h *fasthttp.ResponseHeader) {
	h.VisitAllCookie(func(_, value []byte) {
		ck := fasthttp.AcquireCookie()
		defer fasthttp.ReleaseCookie(ck)
		if err := ck.ParseBytes(value); err != nil {
			return
		}
		name := string(ck.Key())
		v := string(ck.Value())
		exp := ck.Expire()
		expired := !exp.Equal(fasthttp.CookieExpireUnlimited) && exp.Before(time.Now())

		j.mu.Lock()
		defer j.mu.Unlock()
		if v == "" || v == `""` || expired {
			if _, ok := j.cookies[name]; ok {
				delete(j.cookies, name)
				j.changed = true
			}
			return
		}
		if j.cookies[name] != v {
			j.cookies[name] = v
			j.changed = true
		}
	})
}
