package integrationtests

import (
	"github.com/lsst-dm/Daxgen/internal/testutil"
)

const coaddHCL = `
workflow "coadd" {
  description = "HSC coadd"
}

axis "visit" { values = [903334, 903336] }
axis "ccd" {
  range {
    from = 0
    to   = 1
  }
}
axis "tract" { values = [0] }
axis "patch" { values = ["1,1"] }

input "raw" {
  dimensions = ["visit", "ccd"]
  url        = "file:///datasets/raw/${visit}/${ccd}.fits"
  site       = "local"
}

stage "processCcd" {
  fanout         = "per_unit"
  dimensions     = ["visit", "ccd"]
  inputs         = ["raw"]
  outputs        = ["calexp"]
  arguments      = ["/repo", "--id", "visit=${visit}", "ccd=${ccd}"]
  capture_output = true
  profile "pegasus" {
    memory = 2048
  }
  override {
    when = visit == 903334
    profile "pegasus" {
      memory = 4096
    }
  }
}

stage "makeSkyMap" {
  fanout  = "singleton"
  outputs = ["skyMap"]
}

stage "makeCoaddTempExp" {
  fanout     = "per_group"
  dimensions = ["tract", "patch", "visit"]
  group_by   = ["tract", "patch"]
  inputs     = ["calexp", "skyMap"]
  outputs    = ["coaddTempExp"]
  arguments  = ["--id", "tract=${tract}", "patch=${patch}"]
}
`

var coaddStages = []string{"processCcd", "makeSkyMap", "makeCoaddTempExp"}

// pipelineFiles lays out a single-file pipeline next to its transformation
// catalog.
func pipelineFiles(src, catalog string) map[string]string {
	files := make(map[string]string)
	files[testutil.PipelineDir+"/main.hcl"] = src
	files[testutil.TransformationCatalogFile] = catalog
	return files
}

// coaddFiles returns the coadd pipeline with a catalog binding every stage
// plus the extra transformations on site.
func coaddFiles(site string, extra ...string) map[string]string {
	return pipelineFiles(coaddHCL, testutil.TransformationCatalog(site, append(coaddStages, extra...)...))
}
