package disk_test

import (
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/disk"
)

var _ = Describe("SectorCache", func() {
	var (
		data  []byte
		image *disk.MemImage
		c     *disk.SectorCache
	)

	BeforeEach(func() {
		data = make([]byte, 16*1024)
		for i := range data {
			data[i] = byte(i / disk.SectorSize)
		}
		image = disk.NewMemImage(data)
		// 2 sets, 2 ways, 1 KiB blocks
		c = disk.NewSectorCache(disk.CacheConfig{
			Size:          4 * 1024,
			Associativity: 2,
			BlockSize:     1024,
		}, image)
	})

	Describe("reads", func() {
		It("should miss on a cold cache and hit afterwards", func() {
			buf := make([]byte, disk.SectorSize)

			n, err := c.ReadAt(buf, 3*disk.SectorSize)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(disk.SectorSize))
			Expect(buf[0]).To(Equal(byte(3)))

			_, err = c.ReadAt(buf, 2*disk.SectorSize)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf[511]).To(Equal(byte(2)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(2)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(1)))
		})

		It("should read across block boundaries", func() {
			buf := make([]byte, 2*disk.SectorSize)

			n, err := c.ReadAt(buf, disk.SectorSize)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(len(buf)))
			Expect(buf[0]).To(Equal(byte(1)))
			Expect(buf[disk.SectorSize]).To(Equal(byte(2)))
		})

		It("should stop at the end of the image", func() {
			small := disk.NewSectorCache(disk.DefaultCacheConfig(),
				disk.NewMemImage(make([]byte, 1000)))
			buf := make([]byte, disk.SectorSize)

			n, err := small.ReadAt(buf, disk.SectorSize)
			Expect(err).To(MatchError(io.EOF))
			Expect(n).To(Equal(488))
		})
	})

	Describe("writes", func() {
		It("should keep dirty data in the cache until flushed", func() {
			_, err := c.WriteAt([]byte{0xAA, 0xBB}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(data[0]).To(Equal(byte(0)))

			buf := make([]byte, 2)
			_, err = c.ReadAt(buf, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf).To(Equal([]byte{0xAA, 0xBB}))

			Expect(c.Flush()).To(Succeed())
			Expect(data[0]).To(Equal(byte(0xAA)))
			Expect(data[1]).To(Equal(byte(0xBB)))
		})

		It("should write back a dirty block on eviction", func() {
			_, err := c.WriteAt([]byte{0x55}, 10)
			Expect(err).NotTo(HaveOccurred())

			buf := make([]byte, 1)
			// Blocks 0, 2048 and 4096 share set 0.
			_, _ = c.ReadAt(buf, 2048)
			Expect(data[10]).To(Equal(byte(0)))
			_, _ = c.ReadAt(buf, 4096)

			Expect(data[10]).To(Equal(byte(0x55)))
			stats := c.Stats()
			Expect(stats.Evictions).To(Equal(uint64(1)))
			Expect(stats.Writebacks).To(Equal(uint64(1)))
		})

		It("should refuse writes past the end of the image", func() {
			n, err := c.WriteAt([]byte{1, 2}, int64(len(data)-1))
			Expect(err).To(MatchError(disk.ErrOutOfRange))
			Expect(n).To(Equal(1))
		})
	})

	It("should drop cached blocks on reset", func() {
		_, _ = c.WriteAt([]byte{0x77}, 0)
		c.Reset()

		buf := make([]byte, 1)
		_, err := c.ReadAt(buf, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf[0]).To(Equal(byte(0)))
		Expect(data[0]).To(Equal(byte(0)))
	})
})
