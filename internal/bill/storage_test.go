package bill

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(filepath.Join(tmpDir, "receipts"))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		It("should write the file and return its name", func() {
			name, err := storage.Save("hello.png", []byte("hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("hello.png"))
			Expect(filepath.Join(tmpDir, "receipts", "hello.png")).To(BeAnExistingFile())
		})
	})

	Describe("Get", func() {
		It("should read back a saved file", func() {
			_, err := storage.Save("hello.png", []byte("hello"))
			Expect(err).NotTo(HaveOccurred())

			data, err := storage.Get("hello.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("hello")))
		})

		It("should not escape the base directory", func() {
			_, err := storage.Get("../../etc/passwd")
			Expect(err).To(HaveOccurred())
		})

		It("should fail for a missing file", func() {
			_, err := storage.Get("missing.png")
			Expect(err).To(MatchError(ContainSubstring("reading file")))
		})
	})

	Describe("Delete", func() {
		It("should remove the file", func() {
			_, err := storage.Save("hello.png", []byte("hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(storage.Delete("hello.png")).To(Succeed())
			Expect(filepath.Join(tmpDir, "receipts", "hello.png")).NotTo(BeAnExistingFile())
		})
	})
})
