package hdfs_store

import (
	"fmt"
	"log"
	"os"
	"path"

	"github.com/colinmarc/hdfs/v2"
	"github.com/google/uuid"
)

const (
	hdfsRoot     = "/villa"
	hdfsSlipDir  = hdfsRoot + "/slips/"
	hdfsImageDir = hdfsRoot + "/images/"
	hdfsQRDir    = hdfsRoot + "/qr/"
)

// FileStorage is the blob store for payment slips, villa images and
// PromptPay QR codes. The core only keeps the returned reference string.
type FileStorage struct {
	Client *hdfs.Client
	logger *log.Logger
}

func New(logger *log.Logger) (*FileStorage, error) {
	hdfsUri := os.Getenv("HDFS_URI")

	client, err := hdfs.New(hdfsUri)
	if err != nil {
		logger.Println(err)
		return nil, err
	}

	return &FileStorage{
		Client: client,
		logger: logger,
	}, nil
}

func (fs *FileStorage) Close() {
	fs.Client.Close()
}

// CreateDirectories provisions the blob directories. Safe to call on every
// start.
func (fs *FileStorage) CreateDirectories() error {
	for _, dir := range []string{hdfsSlipDir, hdfsImageDir, hdfsQRDir} {
		if err := fs.Client.MkdirAll(dir, 0644); err != nil {
			fs.logger.Println(err)
			return err
		}
	}
	return nil
}

// StorePaymentSlip writes the slip bytes and returns the stable reference
// the booking keeps.
func (fs *FileStorage) StorePaymentSlip(data []byte, ext string) (string, error) {
	return fs.store(hdfsSlipDir, data, ext)
}

func (fs *FileStorage) StoreVillaImage(data []byte, ext string) (string, error) {
	return fs.store(hdfsImageDir, data, ext)
}

func (fs *FileStorage) StoreQRImage(data []byte, ext string) (string, error) {
	return fs.store(hdfsQRDir, data, ext)
}

func (fs *FileStorage) store(dir string, data []byte, ext string) (string, error) {
	fileName := uuid.New().String() + ext
	filePath := dir + fileName

	file, err := fs.Client.Create(filePath)
	if err != nil {
		fs.logger.Println("Error in creating file on HDFS:", err)
		return "", err
	}

	_, err = file.Write(data)
	if err != nil {
		fs.logger.Println("Error in writing file on HDFS:", err)
		file.Close()
		return "", err
	}

	// Flush everything to HDFS before handing out the reference.
	if err := file.Close(); err != nil {
		fs.logger.Println("Error in closing file on HDFS:", err)
		return "", err
	}
	return filePath, nil
}

// ReadFile returns the blob bytes for a reference previously handed out.
func (fs *FileStorage) ReadFile(ref string) ([]byte, error) {
	if err := enforceRoot(ref); err != nil {
		return nil, err
	}
	file, err := fs.Client.Open(ref)
	if err != nil {
		fs.logger.Println("Error in opening file for reading on HDFS:", err)
		return nil, err
	}
	defer file.Close()

	stat := file.Stat()
	buffer := make([]byte, stat.Size())
	n, err := file.Read(buffer)
	if err != nil {
		fs.logger.Println("Error in reading file on HDFS:", err)
		return nil, err
	}
	return buffer[:n], nil
}

func (fs *FileStorage) DeleteFile(ref string) error {
	if err := enforceRoot(ref); err != nil {
		return err
	}
	if err := fs.Client.Remove(ref); err != nil {
		fs.logger.Println("Error in removing file on HDFS:", err)
		return err
	}
	return nil
}

func ExtractFileName(ref string) string {
	return path.Base(ref)
}

func enforceRoot(ref string) error {
	if path.Dir(path.Dir(ref)) != hdfsRoot {
		return fmt.Errorf("reference %s is outside the blob root", ref)
	}
	return nil
}
