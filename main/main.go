package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rawbytedev/soa"
	"github.com/rawbytedev/soa/pkg/colwire"
)

type Particle struct {
	X, Y, Z    float32
	VX, VY, VZ float32
	Mass       float32
	Alive      bool
}

func (p *Particle) SetDefaults() {
	p.Mass = 1
	p.Alive = true
}

func main() {
	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()
	f, err := os.Create("mem.prof")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	runtime.MemProfileRate = 1

	parts := soa.NewSlice[Particle]()
	parts.SetLen(100_000)

	xs := parts.Field("X").([]float32)
	vxs := parts.Field("VX").([]float32)
	for i := range vxs {
		vxs[i] = float32(i%7) * 0.5
	}
	for step := 0; step < 100; step++ {
		for i := range xs {
			xs[i] += vxs[i]
		}
	}

	for i := 0; i < 1000; i++ {
		data, err := colwire.Marshal[Particle](parts, colwire.Options{Compression: colwire.CompZstd})
		if err != nil {
			log.Fatal(err)
		}
		back := soa.NewSlice[Particle]()
		if err := colwire.Unmarshal(data, back, colwire.Options{}); err != nil {
			log.Fatal(err)
		}
	}

	pprof.WriteHeapProfile(f)
	time.Sleep(5 * time.Minute)
}
