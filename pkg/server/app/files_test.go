/* Copyright 2025 ResearchOS Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package app

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/assert"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/testutils"
)

func TestCleanFolder(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"", "/"},
		{"  ", "/"},
		{"/", "/"},
		{"raw", "/raw"},
		{"raw/xrd/", "/raw/xrd"},
		{"raw\\xrd", "/raw/xrd"},
		{"../../etc", "/etc"},
		{"/a/./b/../c", "/a/c"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, cleanFolder(tc.input), tc.expected, "result mismatch")
		})
	}
}

func TestUploadFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		blobs := testutils.NewMockBlobStore()
		a.Blob = blobs
		user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")
		project := testutils.SetupProjectData(a.DB, user, "study")

		file, err := a.UploadFile(context.Background(), user, project, FileUpload{
			Name:        "C:\\data\\cv scan.csv",
			Folder:      "raw/cv",
			Size:        5,
			ContentType: "text/csv",
			Body:        strings.NewReader("1,2,3"),
		})
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, file.Name, "cv scan.csv", "name mismatch")
		assert.Equal(t, file.Folder, "/raw/cv", "folder mismatch")
		assert.Equal(t, file.URL, "/uploads/"+file.StorageKey, "url mismatch")
		assert.Equal(t, strings.HasPrefix(file.StorageKey, "projects/"+project.UUID+"/"), true, "key prefix mismatch")
		assert.Equal(t, string(blobs.Blobs[file.StorageKey]), "1,2,3", "stored content mismatch")

		var got database.File
		testutils.MustExec(t, a.DB.Where("uuid = ?", file.UUID).First(&got), "finding file")
		assert.Equal(t, got.ContentType, "text/csv", "content type mismatch")
		assert.Equal(t, got.Size, int64(5), "size mismatch")
	})

	t.Run("missing body", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")
		project := testutils.SetupProjectData(a.DB, user, "study")

		_, err := a.UploadFile(context.Background(), user, project, FileUpload{Name: "x.txt"})
		assert.Equal(t, err, ErrFileRequired, "error mismatch")
	})

	t.Run("too large", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")
		project := testutils.SetupProjectData(a.DB, user, "study")

		_, err := a.UploadFile(context.Background(), user, project, FileUpload{
			Name: "big.bin",
			Size: MaxFileSize + 1,
			Body: strings.NewReader(""),
		})
		assert.Equal(t, err, ErrFileTooLarge, "error mismatch")
	})

	t.Run("storage failure", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		blobs := testutils.NewMockBlobStore()
		blobs.Err = errors.New("bucket missing")
		a.Blob = blobs
		user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")
		project := testutils.SetupProjectData(a.DB, user, "study")

		_, err := a.UploadFile(context.Background(), user, project, FileUpload{Name: "x.txt", Size: 1, Body: strings.NewReader("x")})
		if err == nil {
			t.Fatal("expected an error")
		}

		var count int64
		testutils.MustExec(t, a.DB.Model(&database.File{}).Count(&count), "counting files")
		assert.Equal(t, count, int64(0), "file count mismatch")
	})
}

func TestListAndDeleteFiles(t *testing.T) {
	a, _, _ := newTestApp(t)
	blobs := testutils.NewMockBlobStore()
	a.Blob = blobs
	user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")
	project := testutils.SetupProjectData(a.DB, user, "study")

	upload := func(name, folder string) database.File {
		f, err := a.UploadFile(context.Background(), user, project, FileUpload{Name: name, Folder: folder, Size: 1, Body: strings.NewReader("x")})
		if err != nil {
			t.Fatal(errors.Wrap(err, "uploading"))
		}
		return f
	}

	b := upload("b.txt", "/")
	upload("a.txt", "/")
	upload("z.txt", "/data")

	files, err := a.ListFiles(project)
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing"))
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Folder+" "+f.Name)
	}
	assert.DeepEqual(t, names, []string{"/ a.txt", "/ b.txt", "/data z.txt"}, "listing mismatch")

	if err := a.DeleteFile(context.Background(), b); err != nil {
		t.Fatal(errors.Wrap(err, "deleting"))
	}
	assert.Equal(t, blobs.Has(b.StorageKey), false, "blob was not removed")

	files, err = a.ListFiles(project)
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing"))
	}
	assert.Equal(t, len(files), 2, "file count mismatch")
}
