package export

// mathjaxScript is the MathJax v3 bootstrap embedded in every export page.
// Typesetting is asynchronous; the startup promise is the readiness signal
// the auto-print script waits on.
const mathjaxScript = `<script>
  window.MathJax = {
    tex: {
      inlineMath: [['\\(', '\\)']],
      displayMath: [['\\[', '\\]']],
      processEscapes: true,
      processEnvironments: true,
      packages: ['base', 'ams', 'noerrors', 'noundefined', 'autoload'],
      macros: {
        R: '{\\mathbb{R}}',
        N: '{\\mathbb{N}}',
        Z: '{\\mathbb{Z}}',
        Q: '{\\mathbb{Q}}',
        C: '{\\mathbb{C}}'
      }
    },
    chtml: {
      fontURL: 'https://cdn.jsdelivr.net/npm/mathjax@3/es5/output/chtml/fonts/woff-v2',
      adaptiveCSS: true,
      matchFontHeight: false,
      scale: 1
    },
    svg: { fontCache: 'local' },
    options: {
      ignoreHtmlClass: 'tex2jax_ignore',
      processHtmlClass: 'tex2jax_process',
      renderActions: { addMenu: [0, '', ''] },
      skipHtmlTags: ['script', 'noscript', 'style', 'textarea', 'pre', 'code']
    },
    startup: {
      ready: () => {
        if (window.MathJax) {
          window.MathJax.startup.defaultReady();
          window.MathJax.startup.promise.then(() => {
            setTimeout(() => {
              if (window.MathJax && window.MathJax.typesetPromise) {
                window.MathJax.typesetPromise().catch(() => {});
              }
            }, 500);
          }).catch(() => {});
        }
      }
    },
    loader: {
      load: ['[tex]/ams', '[tex]/noerrors', '[tex]/noundefined', '[tex]/autoload']
    }
  };
</script>
<script id="MathJax-script" async src="https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-chtml.js"></script>
`

// autoprintScript triggers the print dialog once typesetting settles. The
// printAttempted guard keeps print from firing twice, and the 10s fallback
// guarantees it fires even when the MathJax signal never resolves. The
// window closes itself after the print flow ends.
const autoprintScript = `<script>
  let printAttempted = false;

  function attemptPrint() {
    if (printAttempted) return;
    printAttempted = true;
    try {
      window.print();
    } catch (error) {}
  }

  function waitForMathJaxAndPrint() {
    if (window.MathJax && window.MathJax.startup && window.MathJax.startup.promise) {
      window.MathJax.startup.promise.then(() => {
        setTimeout(() => {
          if (window.MathJax.typesetPromise) {
            window.MathJax.typesetPromise().then(() => {
              setTimeout(attemptPrint, 500);
            }).catch(() => {
              setTimeout(attemptPrint, 1000);
            });
          } else {
            setTimeout(attemptPrint, 1000);
          }
        }, 1000);
      }).catch(() => {
        setTimeout(attemptPrint, 2000);
      });
    } else {
      setTimeout(attemptPrint, 2000);
    }
  }

  window.addEventListener('load', waitForMathJaxAndPrint);

  window.addEventListener('afterprint', () => {
    setTimeout(() => { window.close(); }, 100);
  });

  setTimeout(() => {
    if (!printAttempted) attemptPrint();
  }, 10000);
</script>
`
